package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra el endpoint de pedidos detrás de la sesión.
func RegisterRoutes(route chi.Router, handler *Handler, requireSession func(http.Handler) http.Handler) {
	route.With(requireSession).Post("/enviar-pedido", handler.PlaceOrder)
}
