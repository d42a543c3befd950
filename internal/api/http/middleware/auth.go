// Package middleware содержит HTTP middleware для аутентификации запросов
package middleware

import (
	"net/http"
	"strings"

	"github.com/shestoi/linkmarket/internal/authctx"
	"github.com/shestoi/linkmarket/internal/service"
)

// Authenticator резолвит bearer токены в пользователей через AuthService
type Authenticator struct {
	auth *service.AuthService
}

// NewAuthenticator создаёт новый Authenticator
func NewAuthenticator(auth *service.AuthService) *Authenticator {
	return &Authenticator{auth: auth}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireUser - middleware: резолвит Authorization заголовок,
// при отсутствии/невалидном токене возвращает 401, иначе кладёт
// пользователя в context
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		user, err := a.auth.ResolveToken(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := authctx.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalUser - middleware: как RequireUser, но отсутствие токена
// не является ошибкой. Нужен публичным ручкам, которые показывают
// больше аутентифицированному бэк-офису (например, скрытые позиции каталога)
func (a *Authenticator) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.auth.ResolveToken(r.Context(), token)
		if err != nil {
			// Невалидный токен на публичной ручке - анонимный запрос
			next.ServeHTTP(w, r)
			return
		}

		ctx := authctx.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin - middleware: пропускает только пользователей с is_admin
// Вешается после RequireUser
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := authctx.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
