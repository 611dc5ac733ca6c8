package authctx

import (
	"context"
)

type ctxKeyEmail struct{}

var emailKey = ctxKeyEmail{}

// WithEmail сохраняет подтверждённый email вызывающего в контексте
// (устанавливается HTTP middleware после проверки JWT)
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// EmailFromContext возвращает email из контекста, если он был установлен
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
