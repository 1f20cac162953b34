package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

// defaultOrigin is the local web client used when no origins are configured.
const defaultOrigin = "http://localhost:3000"

// CORS builds the cross-origin policy for the API. Credentials are only
// allowed for an explicit origin list, never together with "*".
func CORS(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{defaultOrigin}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300,
	}
}
