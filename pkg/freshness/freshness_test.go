package freshness

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Directive(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{name: "ok", status: http.StatusOK, want: "public, max-age=3600"},
		{name: "created is not success", status: http.StatusCreated, want: "public, max-age=300"},
		{name: "no content is not success", status: http.StatusNoContent, want: "public, max-age=300"},
		{name: "bad request", status: http.StatusBadRequest, want: "public, max-age=300"},
		{name: "not found", status: http.StatusNotFound, want: "public, max-age=300"},
		{name: "internal error", status: http.StatusInternalServerError, want: "public, max-age=300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPolicy.Directive(tt.status))
		})
	}
}

func TestPolicy_SuccessDiffersFromFailure(t *testing.T) {
	assert.NotEqual(t, DefaultPolicy.Directive(http.StatusOK), DefaultPolicy.Directive(http.StatusInternalServerError))
}

func TestPolicy_CustomDurations(t *testing.T) {
	p := Policy{Success: 90 * time.Second, Failure: 1500 * time.Millisecond}

	assert.Equal(t, "public, max-age=90", p.Directive(http.StatusOK))
	assert.Equal(t, "public, max-age=1", p.Directive(http.StatusBadGateway))
}

func TestPolicy_Annotate(t *testing.T) {
	h := http.Header{HeaderCacheControl: []string{"no-store"}}

	DefaultPolicy.Annotate(h, http.StatusInternalServerError)
	assert.Equal(t, "public, max-age=300", h.Get(HeaderCacheControl))

	DefaultPolicy.Annotate(h, http.StatusOK)
	assert.Equal(t, "public, max-age=3600", h.Get(HeaderCacheControl))
}

func TestPolicy_Refresh(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		remaining time.Duration
		want      string
	}{
		{name: "fresh entry keeps policy", status: http.StatusOK, remaining: 2 * time.Hour, want: "public, max-age=3600"},
		{name: "aging success entry", status: http.StatusOK, remaining: 10 * time.Minute, want: "public, max-age=600"},
		{name: "failure capped by policy", status: http.StatusInternalServerError, remaining: 40 * time.Minute, want: "public, max-age=300"},
		{name: "failure near expiry", status: http.StatusBadRequest, remaining: 42 * time.Second, want: "public, max-age=42"},
		{name: "expired", status: http.StatusOK, remaining: -time.Second, want: "public, max-age=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{HeaderCacheControl: []string{"public, max-age=3600"}}
			DefaultPolicy.Refresh(h, tt.status, tt.remaining)
			assert.Equal(t, tt.want, h.Get(HeaderCacheControl))
		})
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		want    string
	}{
		{
			name: "explicit 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			status: http.StatusOK,
			want:   "public, max-age=3600",
		},
		{
			name: "implicit 200 on write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"owner_name":"A"}`))
			},
			status: http.StatusOK,
			want:   "public, max-age=3600",
		},
		{
			name: "error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "something went wrong", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
			want:   "public, max-age=300",
		},
		{
			name: "handler directive replaced",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(HeaderCacheControl, "no-store")
				w.WriteHeader(http.StatusBadRequest)
			},
			status: http.StatusBadRequest,
			want:   "public, max-age=300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DefaultPolicy.Middleware(tt.handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get(HeaderCacheControl))
		})
	}
}

func TestMiddleware_SecondWriteHeaderIgnored(t *testing.T) {
	h := DefaultPolicy.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "public, max-age=3600", rec.Header().Get(HeaderCacheControl))
}
