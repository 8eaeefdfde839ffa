package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrorInvalidInput       = errors.New("correo y contraseña son obligatorios")
	ErrorEmailInUse         = errors.New("Este correo ya está registrado.")
	ErrorWeakPassword       = errors.New("La contraseña debe tener al menos 6 caracteres.")
	ErrorInvalidCredentials = errors.New("Correo o contraseña incorrectos.")
)

// MinPasswordLen es el mínimo que acepta Firebase.
const MinPasswordLen = 6

// Provider es el servicio de identidad externo (Firebase).
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
}

// Credentials es el payload de registro y login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session es el resultado de un login.
type Session struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// Service implementa registro y login.
type Service struct {
	provider Provider
	issuer   *Issuer
}

// NewService crea el service de auth.
func NewService(provider Provider, issuer *Issuer) *Service {
	return &Service{provider: provider, issuer: issuer}
}

// Register crea la cuenta. No inicia sesión.
func (service *Service) Register(ctx context.Context, credentials Credentials) (Identity, error) {
	email, err := validate(credentials)
	if err != nil {
		return Identity{}, err
	}
	if len(credentials.Password) < MinPasswordLen {
		return Identity{}, ErrorWeakPassword
	}
	return service.provider.SignUp(ctx, email, credentials.Password)
}

// Login verifica credenciales y emite la sesión firmada.
func (service *Service) Login(ctx context.Context, credentials Credentials) (Session, error) {
	email, err := validate(credentials)
	if err != nil {
		return Session{}, err
	}

	identity, err := service.provider.SignIn(ctx, email, credentials.Password)
	if err != nil {
		return Session{}, err
	}

	token, expiresAt, err := service.issuer.Issue(identity)
	if err != nil {
		return Session{}, fmt.Errorf("fallo al crear la sesión: %w", err)
	}
	return Session{Identity: identity, Token: token, ExpiresAt: expiresAt}, nil
}

// TTL es la duración de las cookies de sesión.
func (service *Service) TTL() time.Duration {
	return service.issuer.TTL()
}

func validate(credentials Credentials) (string, error) {
	email := strings.ToLower(strings.TrimSpace(credentials.Email))
	if email == "" || credentials.Password == "" {
		return "", ErrorInvalidInput
	}
	return email, nil
}
