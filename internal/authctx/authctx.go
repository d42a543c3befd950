// Package authctx прокидывает аутентифицированного пользователя через
// context.Context между HTTP middleware и обработчиками
package authctx

import (
	"context"

	"github.com/shestoi/linkmarket/internal/repository"
)

type ctxKey struct{}

// WithUser кладёт пользователя в контекст запроса
func WithUser(ctx context.Context, user repository.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext достаёт пользователя из контекста
// ok == false означает, что запрос не прошёл auth middleware
func UserFromContext(ctx context.Context) (repository.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(repository.User)
	return user, ok
}
