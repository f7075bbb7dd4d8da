package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/pkg/logger"
)

// UserContext resolves the caller identity and stores it in the request
// context. With a JWT secret configured the bearer token subject claim is
// the user ID; without one, a trusted upstream may pass X-User-ID when the
// config allows it. Requests without an identity are rejected.
func UserContext(cfg internal.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, appErr := resolveUserID(cfg, r)
			if appErr != nil {
				writeAuthError(w, appErr)
				return
			}

			ctx := internal.ContextWithUserID(r.Context(), userID)
			ctx = logger.With(ctx, "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUserID(cfg internal.AuthConfig, r *http.Request) (string, *internal.AppError) {
	if cfg.JWTSecret != "" {
		token := extractBearerToken(r)
		if token == "" {
			return "", internal.ErrMissingIdentity
		}
		subject, err := parseSubject(cfg.JWTSecret, token)
		if err != nil {
			return "", internal.ErrInvalidToken
		}
		return subject, nil
	}

	if cfg.AllowHeaderIdentity {
		if userID := strings.TrimSpace(r.Header.Get("X-User-ID")); userID != "" {
			return userID, nil
		}
	}
	return "", internal.ErrMissingIdentity
}

func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return authHeader[7:]
}

func parseSubject(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("token carries no subject")
	}
	return subject, nil
}

func writeAuthError(w http.ResponseWriter, appErr *internal.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": appErr})
}
