// Package httpmiddleware contains the net/http middleware chain shared by the
// API server: recovery, request ids, logging, CORS and telemetry.
package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware is the outermost.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// withRouteContext makes sure r carries a chi routing context. chi reuses a
// context it finds on the request, so the route pattern is readable here
// once the router has served the request.
func withRouteContext(r *http.Request) (*http.Request, *chi.Context) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return r, rctx
	}
	rctx := chi.NewRouteContext()
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx)), rctx
}

func routePattern(rctx *chi.Context) string {
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}

// statusRecorder captures the status code and body size written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}
