package auth

import (
	"net/http"
	"strings"

	"github.com/Lelo88/tienda-golang/internal/httpx"
)

// SessionVerifier valida un token de sesión. Lo implementa *Issuer.
type SessionVerifier interface {
	Verify(token string) (Identity, error)
}

// RequireSession exige una sesión firmada válida (cookie user_session o
// Authorization: Bearer) y deja la identidad en el contexto.
func RequireSession(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := verifier.Verify(sessionToken(request))
			if err != nil {
				httpx.Fail(writer, request, http.StatusUnauthorized, "unauthorized", "sesión inválida o expirada")
				return
			}
			next.ServeHTTP(writer, request.WithContext(WithIdentity(request.Context(), identity)))
		})
	}
}

func sessionToken(request *http.Request) string {
	if cookie, err := request.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
