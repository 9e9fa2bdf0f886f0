// Package testutil provides testing utilities for zzapi.
package testutil

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockUpstreamResponse defines the behavior for a mock upstream response.
type MockUpstreamResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Delay      time.Duration

	// Block, when set, holds the response until it is closed or the
	// request is cancelled.
	Block <-chan struct{}
}

// MockUpstream is a configurable mock of the sites zzapi scrapes and the
// media host it fetches images from.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount      int
	pathCounts        map[string]int
	lastRequestHeader http.Header
}

// NewMockUpstream creates a new mock upstream server. Unknown paths answer 404.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockUpstreamResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		if resp.Block != nil {
			select {
			case <-resp.Block:
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if len(resp.Body) > 0 {
			w.Write(resp.Body)
		}
	})
}

// SetEventPage serves an event page at /event/{id} redirecting to target.
func (m *MockUpstream) SetEventPage(id uint64, target string) {
	m.SetResponse(fmt.Sprintf("/event/%d", id), NewHTMLResponse(EventPage(target)))
}

// SetOrganizerPage serves an organizer page at path announcing siteName.
func (m *MockUpstream) SetOrganizerPage(path, siteName string) {
	m.SetResponse(path, NewHTMLResponse(OrganizerPage(siteName)))
}

// RequestCount returns the number of requests made to the server.
func (m *MockUpstream) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made for path.
func (m *MockUpstream) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockUpstream) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// EventPage renders an event page whose meta refresh points at target.
func EventPage(target string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head>
<meta charset="utf-8" />
<meta http-equiv="refresh" content="0;url='%s'" />
</head><body>Redirecting...</body></html>`, html.EscapeString(target))
}

// OrganizerPage renders a page carrying og:site_name.
func OrganizerPage(siteName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head>
<meta property="og:type" content="website" />
<meta property="og:site_name" content="%s" />
</head><body></body></html>`, html.EscapeString(siteName))
}

// NewHTMLResponse creates a 200 OK HTML response.
func NewHTMLResponse(body string) MockUpstreamResponse {
	return MockUpstreamResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
	}
}

// NewImageResponse creates a 200 OK PNG response.
func NewImageResponse(data []byte) MockUpstreamResponse {
	return MockUpstreamResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers:    map[string]string{"Content-Type": "image/png"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockUpstreamResponse {
	return MockUpstreamResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte("internal server error"),
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
	}
}

// SolidImage returns a w x h image filled with c.
func SolidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// PNG encodes a solid w x h image as PNG.
func PNG(w, h int, c color.Color) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidImage(w, h, c)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
