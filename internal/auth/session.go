package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen es el largo mínimo de la clave HMAC de sesión.
const MinSecretLen = 32

const sessionIssuer = "tienda"

var (
	ErrorInvalidSession = errors.New("sesión inválida o expirada")
	ErrorShortSecret    = fmt.Errorf("la clave de sesión debe tener al menos %d bytes", MinSecretLen)
)

// Identity es el usuario autenticado de una request.
type Identity struct {
	UID   string
	Email string
}

// Claims del token de sesión. Subject es el UID de Firebase.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer firma y verifica tokens de sesión (HS256).
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer crea un emisor de sesiones.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrorShortSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL devuelve la duración de la sesión.
func (issuer *Issuer) TTL() time.Duration {
	return issuer.ttl
}

// Issue firma un token para identity. Devuelve también el vencimiento.
func (issuer *Issuer) Issue(identity Identity) (string, time.Time, error) {
	now := issuer.now()
	expiresAt := now.Add(issuer.ttl)

	claims := Claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("fallo al firmar la sesión: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify valida firma, emisor y vencimiento.
func (issuer *Issuer) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrorInvalidSession
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return issuer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(issuer.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrorInvalidSession, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, ErrorInvalidSession
	}

	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

type identityKey struct{}

// WithIdentity guarda la identidad en el contexto.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom lee la identidad que dejó RequireSession.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
