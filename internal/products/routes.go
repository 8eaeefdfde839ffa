package products

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra las rutas del catálogo.
// Leer es público; crear exige sesión (requireSession).
func RegisterRoutes(route chi.Router, handler *Handler, requireSession func(http.Handler) http.Handler) {
	route.Route("/productos", func(route chi.Router) {
		route.Get("/", handler.List)
		route.Get("/{id}", handler.GetByID)
		route.With(requireSession).Post("/", handler.Create)
	})
}
