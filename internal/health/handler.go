package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Lelo88/tienda-golang/internal/httpx"
)

const pingTimeout = 2 * time.Second

// Pinger es cualquier dependencia que sabe responder si está disponible.
type Pinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	name   string
	pinger Pinger
}

// Handler encapsula /health y /ready.
type Handler struct {
	backend string
	store   Pinger
	checks  []check
}

// Option agrega chequeos opcionales a /ready.
type Option func(*Handler)

// WithCheck suma una dependencia opcional (broker, etc.) al chequeo de /ready.
func WithCheck(name string, pinger Pinger) Option {
	return func(handler *Handler) {
		if pinger != nil {
			handler.checks = append(handler.checks, check{name: name, pinger: pinger})
		}
	}
}

// New crea un handler de health para el backend de productos indicado.
func New(backend string, store Pinger, opts ...Option) *Handler {
	handler := &Handler{backend: backend, store: store}
	for _, opt := range opts {
		opt(handler)
	}
	return handler
}

// Health indica si el proceso está vivo. No toca dependencias.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready chequea el store de productos y las dependencias opcionales.
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if handler.store == nil {
		httpx.Fail(w, r, http.StatusServiceUnavailable, "not_ready", "store not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := handler.store.Ping(ctx); err != nil {
		httpx.Fail(w, r, http.StatusServiceUnavailable, "not_ready", handler.backend+" is not reachable")
		return
	}

	for _, c := range handler.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			httpx.Fail(w, r, http.StatusServiceUnavailable, "not_ready", c.name+" is not reachable")
			return
		}
	}

	httpx.OK(w, r, http.StatusOK, map[string]any{
		"status":  "ready",
		"backend": handler.backend,
	})
}
