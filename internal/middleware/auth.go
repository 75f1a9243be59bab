package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"taskBoard/internal/auth"
	"taskBoard/internal/logger"

	"go.uber.org/zap"
)

const APIKeyHeader = "X-API-Key"

type AuthConfig struct {
	Sessions *auth.Sessions
	// APIKey пустой - вход по ключу выключен
	APIKey string
	// RequireCredential - без сессии или ключа отвечаем 401
	RequireCredential bool
	// Exempt - префиксы путей без проверки
	Exempt []string
}

// Auth кладёт пользователя сессии в контекст и, если нужно, требует сессию или ключ
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.Exempt {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			var userID string
			if cfg.Sessions != nil {
				id, err := cfg.Sessions.FromRequest(r)
				if err != nil {
					logger.Warn("HTTP: Недействительная сессия",
						zap.Error(err),
						zap.String("client_ip", r.RemoteAddr))
				}
				userID = id
			}

			if userID != "" {
				r = r.WithContext(auth.WithUser(r.Context(), userID))
			} else if cfg.RequireCredential && !validKey(cfg.APIKey, r.Header.Get(APIKeyHeader)) {
				logger.Warn("HTTP: Запрос без авторизации",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr),
					zap.String("request_id", GetRequestID(r.Context())))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validKey(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
