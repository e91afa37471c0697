package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclinks/doclinks/config"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func serve(cfg config.Config, authHeader string) (*httptest.ResponseRecorder, string) {
	var seen string
	h := AuthMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/documents/links", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	rr, _ := serve(config.Config{}, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAuthAcceptsValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "s3cret"}
	tok := signed(t, "s3cret", jwt.MapClaims{"sub": "pipeline-7", "exp": time.Now().Add(time.Hour).Unix()})

	rr, client := serve(cfg, "Bearer "+tok)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "pipeline-7", client)
}

func TestAuthRejects(t *testing.T) {
	cfg := config.Config{JWTSecret: "s3cret"}
	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Token abc",
		"bad secret":   "Bearer " + signed(t, "other", jwt.MapClaims{"sub": "x"}),
		"expired":      "Bearer " + signed(t, "s3cret", jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":   "Bearer " + signed(t, "s3cret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rr, _ := serve(cfg, header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestAuthRejectsOtherAlgorithms(t *testing.T) {
	cfg := config.Config{JWTSecret: "s3cret"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "x"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	rr, client := serve(cfg, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, client)
}
