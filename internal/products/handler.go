package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lelo88/tienda-golang/internal/httpx"
)

// ServiceAPI define lo que el handler necesita.
// Permite testear handlers con stubs sin tocar DB.
type ServiceAPI interface {
	Create(ctx context.Context, input CreateProductInput) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}

// Handler HTTP para productos.
// Solo traduce HTTP <-> dominio (service).
type Handler struct {
	service ServiceAPI
}

// NewHandler crea un handler de productos.
func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// Create maneja POST /api/productos.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input CreateProductInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_json", "cuerpo JSON inválido")
		return
	}

	product, err := handler.service.Create(request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrorMissingFields):
			httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", "Faltan campos obligatorios: nombre, precio y categoría.")
		case errors.Is(err, ErrorInvalidInput):
			httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			// No filtramos detalles internos.
			httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "no se pudo crear el producto")
		}
		return
	}

	httpx.OK(writer, request, http.StatusCreated, product)
}

// List maneja GET /api/productos.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	products, err := handler.service.List(request.Context())
	if err != nil {
		httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "no se pudo obtener el catálogo")
		return
	}

	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"productos": products,
	})
}

// GetByID maneja GET /api/productos/{id}.
// Los ids los asigna el almacén (Firestore o uuid), no se valida formato.
func (handler *Handler) GetByID(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	product, err := handler.service.Get(request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrorNotFound):
			httpx.Fail(writer, request, http.StatusNotFound, "not_found", "producto no encontrado")
		default:
			httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "no se pudo obtener el producto")
		}
		return
	}

	httpx.OK(writer, request, http.StatusOK, product)
}
