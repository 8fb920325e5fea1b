package gateway

import (
	"net/http"

	"github.com/rs/cors"
)

// newCORS builds the cross-origin policy for the command and state endpoints.
// An empty origin list allows any origin.
func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"*"},
		MaxAge:         86400, // 24 hours
	})
}
