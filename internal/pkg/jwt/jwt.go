package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrMissingClaims = errors.New("token claims missing from context")

// Claims are the fields this service reads from an access token. Tokens are
// issued elsewhere and signed with the shared HS256 secret.
type Claims struct {
	UserID     string
	EmployeeID string
	Type       string
	IsAdmin    bool
}

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// ClaimsFromContext reads the verified claims placed by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	if token == nil {
		return Claims{}, ErrMissingClaims
	}

	var c Claims
	c.UserID, _ = claims["user_id"].(string)
	c.EmployeeID, _ = claims["employee_id"].(string)
	c.Type, _ = claims["type"].(string)
	if admin, ok := claims["is_admin"].(bool); ok {
		c.IsAdmin = admin
	} else if role, ok := claims["role"].(string); ok {
		c.IsAdmin = role == "admin" || role == "owner"
	}
	return c, nil
}
