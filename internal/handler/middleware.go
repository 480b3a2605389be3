package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/service"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// AuthMiddleware valida el token Bearer y deja el usuario y su rol en el
// contexto de la petición.
func AuthMiddleware(authService *service.AuthService, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "la cabecera Authorization es obligatoria"})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "formato de cabecera Authorization no válido"})
				return
			}

			claims, err := authService.ParseToken(parts[1])
			if err != nil {
				logger.WithError(err).Warn("Token rechazado")
				respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "token no válido"})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly exige rol ADMIN; se monta sobre el subrouter de administración
// después de AuthMiddleware.
func AdminOnly(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(roleKey).(model.Role)
			if !ok || role != model.RoleAdmin {
				logger.WithField("user_id", userIDFrom(r)).Warn("Acceso administrativo denegado")
				respondJSON(w, http.StatusForbidden, map[string]string{"error": "se requiere rol de administrador"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// clientIP devuelve la IP del cliente respetando X-Forwarded-For cuando la
// petición llega a través de un proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return host[:idx]
	}
	return host
}
