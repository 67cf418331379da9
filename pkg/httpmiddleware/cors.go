package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures CORS.
type CORSConfig struct {
	// Origins allowed to call the API. Empty or "*" allows any origin.
	Origins []string
	// Methods defaults to the methods the API serves.
	Methods []string
	// Headers allowed on requests. When empty the preflight's requested
	// headers are echoed.
	Headers []string
	// Credentials disables the wildcard origin and echoes the caller's.
	Credentials bool
	// MaxAge in seconds for caching preflight results; zero omits it.
	MaxAge int
}

// CORS answers preflight requests and adds CORS headers to actual requests.
func CORS(cfg CORSConfig) Middleware {
	anyOrigin := len(cfg.Origins) == 0
	origins := make(map[string]string, len(cfg.Origins))
	for _, o := range cfg.Origins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		origins[strings.ToLower(o)] = o
	}
	wildcard := anyOrigin && !cfg.Credentials

	methods := strings.Join(cfg.Methods, ", ")
	if methods == "" {
		methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	headers := strings.Join(cfg.Headers, ", ")

	allow := func(origin string) string {
		switch {
		case wildcard:
			return "*"
		case anyOrigin:
			return origin
		default:
			return origins[strings.ToLower(origin)]
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if !wildcard {
				h.Add("Vary", "Origin")
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			allowed := allow(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if allowed != "" {
					h.Set("Access-Control-Allow-Origin", allowed)
					h.Set("Access-Control-Allow-Methods", methods)
					if headers != "" {
						h.Set("Access-Control-Allow-Headers", headers)
					} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
						h.Set("Access-Control-Allow-Headers", req)
					}
					if cfg.Credentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Expose-Headers", HeaderRequestID)
				if cfg.Credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
