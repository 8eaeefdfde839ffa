package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Lelo88/tienda-golang/internal/auth"
	"github.com/Lelo88/tienda-golang/internal/httpx"
)

// ServiceAPI define lo que el handler necesita.
type ServiceAPI interface {
	PlaceOrder(ctx context.Context, request Request, buyer string) (Order, error)
}

// Handler HTTP del pedido. No usa el sobre estándar: el frontend espera
// {success} o {error, details}.
type Handler struct {
	service ServiceAPI
}

// NewHandler crea el handler de pedidos.
func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// PlaceOrder maneja POST /api/enviar-pedido.
// Cualquier error (validación, stock, DB o correo) responde 500 con details.
func (handler *Handler) PlaceOrder(writer http.ResponseWriter, request *http.Request) {
	identity, _ := auth.IdentityFrom(request.Context())

	var body Request
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		fail(writer, fmt.Errorf("cuerpo JSON inválido: %w", err))
		return
	}

	if _, err := handler.service.PlaceOrder(request.Context(), body, identity.Email); err != nil {
		fail(writer, err)
		return
	}

	httpx.WriteJSON(writer, http.StatusOK, successResponse{Success: true})
}

func fail(writer http.ResponseWriter, err error) {
	httpx.WriteJSON(writer, http.StatusInternalServerError, errorResponse{
		Error:   "No se pudo procesar el pedido.",
		Details: err.Error(),
	})
}
