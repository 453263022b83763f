package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token. It must run
// after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.ClaimsFromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		if claims.Type != "access" {
			response.Unauthorized(w, "Access token required")
			return
		}
		if claims.UserID == "" && claims.EmployeeID == "" {
			response.Unauthorized(w, "Token carries no identity")
			return
		}

		next.ServeHTTP(w, r)
	})
}
