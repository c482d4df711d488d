package middleware

import "net/http"

// corsAllowedMethods はAPIが公開しているメソッド。
const corsAllowedMethods = "GET, POST, DELETE, OPTIONS"

// NewCORSMiddleware はallowedOriginからのクロスオリジン要求のみを許可するミドルウェアを返す。
// Cookieを送信させるため、ワイルドカード(*)は使用せず、一致したOriginだけを返す。
// プリフライト(OPTIONS + Access-Control-Request-Method)には204で応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin != "" && origin == allowedOrigin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+csrfHeaderName)
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
