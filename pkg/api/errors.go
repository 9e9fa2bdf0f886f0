package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/nekok500/zzapi/pkg/canvas"
	"github.com/nekok500/zzapi/pkg/extract"
	"github.com/nekok500/zzapi/pkg/logging"
	"github.com/nekok500/zzapi/pkg/upstream"
	"github.com/nekok500/zzapi/pkg/zaiko"
)

// writeError maps err to a status and plain-text body.
// Validation failures are 400 with their message; everything else is 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	var ve *zaiko.ValidationError
	if errors.As(err, &ve) {
		logger.Warn().Str("reason", ve.Detail()).Msg("Rejected request")
		writeText(w, http.StatusBadRequest, ve.Error())
		return
	}

	event := logger.Error().Err(err).Str("kind", errorKind(err))
	var fe *upstream.FetchError
	if errors.As(err, &fe) {
		event = event.Str("error_class", string(fe.ErrorClass)).Int("upstream_status", fe.StatusCode)
	}
	event.Msg("Request failed")

	writeText(w, http.StatusInternalServerError, fmt.Sprintf("Something went wrong: %v", err))
}

// writeText writes body verbatim. Unlike http.Error it adds no trailing newline.
func writeText(w http.ResponseWriter, status int, body string) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// errorKind names the failure for logs.
func errorKind(err error) string {
	var (
		fe *upstream.FetchError
		ee *extract.Error
		de *canvas.DecodeError
	)
	switch {
	case errors.As(err, &fe):
		return "upstream"
	case errors.As(err, &ee):
		return "extraction"
	case errors.As(err, &de):
		return "decode"
	default:
		return "internal"
	}
}
