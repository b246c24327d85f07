package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/core"
)

// Authorizer validates admin session tokens.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (adminauth.Session, error)
}

type sessionKey struct{}

// AdminAuth returns middleware that requires a valid admin session token in
// the Authorization header ("Bearer <token>").
func AdminAuth(auth Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				slog.Warn("auth: missing session token",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", ClientIP(r),
				)
				writeError(w, http.StatusUnauthorized, adminauth.ErrInvalidToken)
				return
			}

			sess, err := auth.Authorize(r.Context(), token)
			if err != nil {
				status := authStatus(err)
				level := slog.LevelWarn
				msg := "auth: rejected session token"
				if status != http.StatusUnauthorized {
					level = slog.LevelError
					msg = "auth: session lookup failed"
				}
				slog.Log(r.Context(), level, msg,
					"path", r.URL.Path,
					"method", r.Method,
					"ip", ClientIP(r),
					"error", err,
				)
				writeError(w, status, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authStatus returns 401 for token and session errors. Anything else is a
// failure to check the session store and maps to 503.
func authStatus(err error) int {
	if errors.Is(err, adminauth.ErrInvalidToken) || errors.Is(err, core.ErrSessionEnded) {
		return http.StatusUnauthorized
	}
	return http.StatusServiceUnavailable
}

// SessionFromContext returns the admin session set by AdminAuth.
func SessionFromContext(ctx context.Context) (adminauth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(adminauth.Session)
	return sess, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeError writes the coded JSON error body shared with the web package.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := core.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
