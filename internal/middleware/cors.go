// Package middleware holds the HTTP middleware chain: CORS, request
// logging and prometheus instrumentation.
package middleware

import "net/http"

// CORS echoes an allow-listed origin (or "*") on every response and
// answers OPTIONS preflights with 204. origins comes straight from
// configuration; a single "*" entry allows anything.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := map[string]bool{}
	for _, o := range origins {
		if o == "*" {
			allowAny = true
			continue
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
