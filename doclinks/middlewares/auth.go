// doclinks/middlewares/auth.go
package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"doclinks/doclinks/config"
	"doclinks/doclinks/utils/logging"
)

type contextKey string

const ClientIDKey contextKey = "client_id"

var errNoBearer = errors.New("missing bearer token")

// AuthMiddleware guards document and agent routes with an HS256 bearer token
// signed with JWT_SECRET. The token subject identifies the calling client.
// With no secret configured every request passes.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.JWTSecret == "" {
			return next
		}
		key := []byte(cfg.JWTSecret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, err := authenticate(r, key)
			if err != nil {
				logging.RequestLogger.Info("rejected request",
					zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ClientIDKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, key []byte) (string, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errNoBearer
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// ClientID returns the authenticated token subject, if any.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(ClientIDKey).(string)
	return id
}
