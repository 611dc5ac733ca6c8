package middleware

import (
	"net/http"
	"strings"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/authctx"
)

// TokenVerifier проверяет подпись токена и возвращает email владельца.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// WithBearerToken — HTTP middleware: читает заголовок Authorization (Bearer <token>),
// при отсутствии или невалидной подписи возвращает 401, иначе кладёт email в context.
func WithBearerToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "unauthorized access", http.StatusUnauthorized)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "unauthorized access", http.StatusUnauthorized)
				return
			}

			email, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized access", http.StatusUnauthorized)
				return
			}

			ctx := authctx.WithEmail(r.Context(), email) // добавляем email в контекст
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
