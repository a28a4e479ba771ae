package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"taskBurst/internal/auth"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/user"

	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// Authenticate кладёт в контекст результат проверки токена.
// Запрос без токена или с плохим токеном идёт дальше как signed_out,
// отказ выдаёт RequireUser или сервис.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithSignedOut(r.Context())

			if token := auth.BearerToken(r); token != "" {
				u, err := a.Authenticate(r.Context(), token)
				if err != nil {
					logger.Info("HTTP: токен не принят",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.Error(err))
				} else {
					ctx = auth.WithUser(r.Context(), u)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, state := auth.FromContext(r.Context()); state != auth.StateSignedIn {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":      "NOT_AUTHENTICATED",
				"message":    "Необходимо войти в аккаунт",
				"state":      state,
				"request_id": GetRequestID(r.Context()),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
