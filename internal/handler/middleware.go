package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	tipoUsuarioKey contextKey = "tipoUsuario"
)

// JWTAuthMiddleware validates Bearer tokens and injects the user identity
// into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, tipoUsuarioKey, claims.TipoUsuario)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTipo restricts a route group to a single user role. It assumes
// JWTAuthMiddleware already ran.
func RequireTipo(tipo domain.TipoUsuario, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TipoFromContext(r.Context()) != string(tipo) {
				logger.Warn("auth: role denied",
					zap.String("path", r.URL.Path),
					zap.String("required", string(tipo)),
					zap.String("actual", TipoFromContext(r.Context())),
				)
				msg := "Acesso negado"
				if tipo == domain.TipoAdmin {
					msg = "Acesso negado. Apenas administradores."
				}
				writeError(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware feeds the request histogram and the success/error
// counters behind GET /v1/admin/metrics. The operation label is the
// routed chi pattern, so path parameters do not explode cardinality.
func metricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			operation := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
			metrics.RecordRequestDuration(operation, time.Since(start))
			if ww.Status() >= 400 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// TipoFromContext extracts the authenticated user role from context.
func TipoFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tipoUsuarioKey).(string)
	return v
}
