package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nekok500/zzapi/pkg/canvas"
	"github.com/nekok500/zzapi/pkg/logging"
	"github.com/nekok500/zzapi/pkg/zaiko"
)

var canvasFitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "zzapi_canvas_fit_duration_seconds",
	Help:    "Time to decode, fit and encode a square image",
	Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
})

// OwnerResolver looks up the organizer of an event.
type OwnerResolver interface {
	OwnerName(ctx context.Context, id uint64) (string, error)
}

// ownerResponse is the body of GET /zaiko/events/{event_id}.
type ownerResponse struct {
	OwnerName string `json:"owner_name"`
}

func (s *Server) handleEventOwner(w http.ResponseWriter, r *http.Request) {
	id, err := zaiko.ParseEventID(r.PathValue("event_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	name, err := s.resolver.OwnerName(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug().Uint64("event_id", id).Str("owner_name", name).Msg("Resolved event owner")
	writeJSON(w, http.StatusOK, ownerResponse{OwnerName: name})
}

func (s *Server) handleSquare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	src := q.Get("u")
	if err := s.images.Check(src); err != nil {
		writeError(w, r, err)
		return
	}
	spec, err := zaiko.ParseCanvasSize(q.Get("w"), q.Get("h"), s.canvasSize, s.maxCanvasSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := s.fetcher.Fetch(r.Context(), src)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	img, err := canvas.Decode(data, s.maxPixels)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf, canvas.Fit(img, spec)); err != nil {
		writeError(w, r, err)
		return
	}
	canvasFitDuration.Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeText(w, http.StatusInternalServerError, "Something went wrong: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
