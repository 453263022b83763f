package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verify(t *testing.T, svc Service, token string) (Claims, error) {
	t.Helper()
	var (
		got    Claims
		gotErr error
	)
	handler := jwtauth.Verifier(svc.JWTAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = ClaimsFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got, gotErr
}

func TestClaimsFromContext(t *testing.T) {
	svc := NewJWTService("secret")
	_, token, err := svc.JWTAuth().Encode(map[string]interface{}{
		"user_id":     "u-1",
		"employee_id": "e-1",
		"type":        "access",
		"is_admin":    true,
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	c, err := verify(t, svc, token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "u-1", EmployeeID: "e-1", Type: "access", IsAdmin: true}, c)
}

func TestClaimsFromContext_RoleFallback(t *testing.T) {
	svc := NewJWTService("secret")
	_, token, err := svc.JWTAuth().Encode(map[string]interface{}{
		"user_id": "u-2",
		"type":    "access",
		"role":    "owner",
	})
	require.NoError(t, err)

	c, err := verify(t, svc, token)
	require.NoError(t, err)
	assert.True(t, c.IsAdmin)
	assert.Empty(t, c.EmployeeID)
}

func TestClaimsFromContext_WrongSecret(t *testing.T) {
	_, token, err := NewJWTService("other").JWTAuth().Encode(map[string]interface{}{"user_id": "u-3"})
	require.NoError(t, err)

	_, err = verify(t, NewJWTService("secret"), token)
	assert.Error(t, err)
}

func TestClaimsFromContext_NoToken(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingClaims)
}
