package auth

import "github.com/go-chi/chi/v5"

// RegisterRoutes registra las rutas de autenticación.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Post("/registro", handler.Register)
	route.Post("/login", handler.Login)
	route.Post("/logout", handler.Logout)
}
