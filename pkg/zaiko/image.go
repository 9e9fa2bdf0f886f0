package zaiko

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nekok500/zzapi/pkg/canvas"
)

// DefaultImagePrefix is where zaiko serves its media.
const DefaultImagePrefix = "https://media.zaiko.io/"

// ImagePolicy decides which image URLs may be fetched.
type ImagePolicy struct {
	// Prefix every allowed URL starts with.
	Prefix string
}

// Check returns a *ValidationError wrapping ErrURLNotAllowed unless raw is an
// absolute http(s) URL starting with the policy prefix. raw must also be on the
// prefix's scheme and host, so a prefix without a path cannot be extended
// into another domain.
func (p ImagePolicy) Check(raw string) error {
	reject := &ValidationError{Field: "u", Value: raw, Err: ErrURLNotAllowed}

	if raw == "" || p.Prefix == "" || !strings.HasPrefix(raw, p.Prefix) {
		return reject
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return reject
	}
	prefix, err := url.Parse(p.Prefix)
	if err != nil || !strings.EqualFold(u.Scheme, prefix.Scheme) || !strings.EqualFold(u.Host, prefix.Host) {
		return reject
	}
	return nil
}

// ParseCanvasSize reads optional width and height parameters. Empty values
// fall back to def; anything else must be an integer in 1..max.
func ParseCanvasSize(w, h string, def, max int) (canvas.Spec, error) {
	width, err := parseDimension("w", w, def, max)
	if err != nil {
		return canvas.Spec{}, err
	}
	height, err := parseDimension("h", h, def, max)
	if err != nil {
		return canvas.Spec{}, err
	}
	return canvas.Spec{Width: width, Height: height}, nil
}

func parseDimension(field, s string, def, max int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > max {
		return 0, &ValidationError{Field: field, Value: s, Err: ErrInvalidCanvasSize}
	}
	return n, nil
}
