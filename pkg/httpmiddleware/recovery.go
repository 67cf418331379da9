package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Recovery turns a panic into a logged 500 response carrying the API error
// envelope.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zctx.From(r.Context()).Error("Panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)

				var e jx.Encoder
				e.Obj(func(e *jx.Encoder) {
					e.Field("status", func(e *jx.Encoder) { e.Str("error") })
					e.Field("message", func(e *jx.Encoder) { e.Str("Internal server error.") })
					e.Field("details", func(e *jx.Encoder) { e.Str("unexpected panic") })
				})
				w.Header().Set("Connection", "close")
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(e.Bytes())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
