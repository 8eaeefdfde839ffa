package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Lelo88/tienda-golang/internal/httpx"
)

// ServiceAPI define lo que el handler necesita.
type ServiceAPI interface {
	Register(ctx context.Context, credentials Credentials) (Identity, error)
	Login(ctx context.Context, credentials Credentials) (Session, error)
	TTL() time.Duration
}

// Handler HTTP de registro, login y logout.
type Handler struct {
	service ServiceAPI
	cookies CookieOptions
}

// NewHandler crea el handler de auth.
func NewHandler(service ServiceAPI, cookies CookieOptions) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// Register maneja POST /api/registro.
func (handler *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	var credentials Credentials
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_json", "cuerpo JSON inválido")
		return
	}

	identity, err := handler.service.Register(request.Context(), credentials)
	if err != nil {
		switch {
		case errors.Is(err, ErrorInvalidInput), errors.Is(err, ErrorWeakPassword):
			httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, ErrorEmailInUse):
			httpx.Fail(writer, request, http.StatusConflict, "conflict", err.Error())
		default:
			httpx.Fail(writer, request, http.StatusBadGateway, "auth_unavailable", "no se pudo crear la cuenta")
		}
		return
	}

	httpx.OK(writer, request, http.StatusCreated, map[string]any{
		"uid":     identity.UID,
		"email":   identity.Email,
		"message": "¡Cuenta creada con éxito! Ahora puedes iniciar sesión.",
	})
}

// Login maneja POST /api/login. Deja las cookies de sesión.
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var credentials Credentials
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_json", "cuerpo JSON inválido")
		return
	}

	session, err := handler.service.Login(request.Context(), credentials)
	if err != nil {
		switch {
		case errors.Is(err, ErrorInvalidInput):
			httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, ErrorInvalidCredentials):
			httpx.Fail(writer, request, http.StatusUnauthorized, "invalid_credentials", err.Error())
		default:
			httpx.Fail(writer, request, http.StatusBadGateway, "auth_unavailable", "no se pudo iniciar sesión")
		}
		return
	}

	SetSessionCookies(writer, session.Token, session.Identity.Email, handler.service.TTL(), handler.cookies)
	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"email":      session.Identity.Email,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
		"message":    "¡Bienvenido!",
	})
}

// Logout maneja POST /api/logout. Siempre responde 200.
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	ClearSessionCookies(writer, handler.cookies)
	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"message": "sesión cerrada",
	})
}
