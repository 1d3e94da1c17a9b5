package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, authorization string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(testSecret)(func(c echo.Context) error { return nil })
	require.NoError(t, handler(c))
	return c
}

func TestAuthResolvesCustomer(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "cust-42", "email": "user@example.com"})
	c := runAuth(t, "Bearer "+token)

	assert.Equal(t, "cust-42", CustomerID(c))
	assert.Equal(t, "user@example.com", CustomerEmail(c))
}

func TestAuthNoTokenIsGuest(t *testing.T) {
	c := runAuth(t, "")

	assert.Empty(t, CustomerID(c))
	assert.Empty(t, CustomerEmail(c))
}

func TestAuthInvalidTokenIsGuest(t *testing.T) {
	c := runAuth(t, "Bearer not.a.jwt")

	assert.Empty(t, CustomerID(c))
}

func TestAuthWrongSecretIsGuest(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "cust-42"})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	c := runAuth(t, "Bearer "+signed)
	assert.Empty(t, CustomerID(c))
}
