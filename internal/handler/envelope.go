package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// writeData writes {status:"success", data:<data>}.
func writeData(w http.ResponseWriter, code int, data func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(statusSuccess) })
		e.Field("data", data)
	})
	write(w, code, e.Bytes())
}

// writeError writes {status:"error", message, details}.
func writeError(w http.ResponseWriter, code int, message, details string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(statusError) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		e.Field("details", func(e *jx.Encoder) { e.Str(details) })
	})
	write(w, code, e.Bytes())
}

func write(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func encodeArray[T any](items []T, encode func(e *jx.Encoder, v T)) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, v := range items {
				encode(e, v)
			}
		})
	}
}
