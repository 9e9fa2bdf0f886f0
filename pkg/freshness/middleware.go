package freshness

import "net/http"

// Middleware sets Cache-Control on every response of next. A directive set by
// the handler itself is replaced.
func (p Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&annotator{ResponseWriter: w, policy: p}, r)
	})
}

type annotator struct {
	http.ResponseWriter
	policy      Policy
	wroteHeader bool
}

func (a *annotator) WriteHeader(code int) {
	if !a.wroteHeader {
		a.wroteHeader = true
		a.policy.Annotate(a.Header(), code)
	}
	a.ResponseWriter.WriteHeader(code)
}

func (a *annotator) Write(b []byte) (int, error) {
	if !a.wroteHeader {
		a.WriteHeader(http.StatusOK)
	}
	return a.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (a *annotator) Unwrap() http.ResponseWriter {
	return a.ResponseWriter
}
