package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("u1", "Alice", "alice@example.com", "w1")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
	req.Equal("Alice", claims.Name)
	req.Equal("alice@example.com", claims.Email)
	req.Equal("w1", claims.WorkspaceID)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	req := require.New(t)

	var seen *Claims
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	// No header is rejected.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	// Valid bearer token passes the claims through.
	token, err := GenerateToken("u1", "Alice", "alice@example.com", "w1")
	req.NoError(err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
	req.NotNil(seen)
	req.Equal("u1", seen.UserID)
}
