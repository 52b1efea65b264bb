package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the listed frontend origins to call the API with credentials
// (the session cookie). Requests without an Origin header, such as curl or
// same-origin calls, pass through untouched; other origins get no CORS
// headers, so the browser blocks them.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
