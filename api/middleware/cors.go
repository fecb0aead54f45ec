package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Storefront and admin frontends plus local dev.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://mangobox.my",
	"https://www.mangobox.my",
	"https://admin.mangobox.my",
}

// CORS applies the API's allowed origin policy. Extra origins (staging
// previews and the like) can be appended by the caller.
func CORS(extraOrigins ...string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(defaultCORSOrigins)+len(extraOrigins))
	origins = append(origins, defaultCORSOrigins...)
	for _, o := range extraOrigins {
		if o != "" {
			origins = append(origins, o)
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
