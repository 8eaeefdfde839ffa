package docs

import "github.com/go-chi/chi/v5"

// RegisterRoutes monta las rutas de documentación (Swagger UI + OpenAPI).
func RegisterRoutes(r chi.Router) {
	// El subrouter atiende /docs y /docs/ con la misma página; swagger.html usa rutas absolutas.
	r.Route("/docs", func(r chi.Router) {
		r.Get("/", SwaggerUIHandler())
		r.Get("/openapi.yaml", OpenAPIHandler())
		r.Get("/openapi.json", OpenAPIJSONHandler())
	})
}
