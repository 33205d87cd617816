package middleware

import (
	"context"
	"net/http"
	"strings"

	authkit "github.com/zetsy/authkit"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validation result stored by [Guard]
// for the current request.
func AuthResultFromContext(ctx context.Context) (*authkit.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authkit.AuthResult)
	return res, ok
}

// Guard rejects requests without a valid bearer access token. On success
// the [authkit.AuthResult] is injected into the request context.
func Guard(engine *authkit.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.ValidateAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
