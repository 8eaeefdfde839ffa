package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Lelo88/tienda-golang/internal/auth"
	"github.com/Lelo88/tienda-golang/internal/checkout"
)

type stubService struct {
	placeFn func(ctx context.Context, request checkout.Request, buyer string) (checkout.Order, error)

	called  bool
	request checkout.Request
	buyer   string
}

func (service *stubService) PlaceOrder(ctx context.Context, request checkout.Request, buyer string) (checkout.Order, error) {
	service.called = true
	service.request = request
	service.buyer = buyer
	if service.placeFn != nil {
		return service.placeFn(ctx, request, buyer)
	}
	return checkout.Order{}, nil
}

const orderBody = `{"productos":[{"id":"a","nombre":"Mouse","precio":"10.00","cantidad":2,"stock":7}],"total":"20.00","usuarioEmail":"ana@example.com"}`

func withIdentity(req *http.Request) *http.Request {
	ctx := auth.WithIdentity(req.Context(), auth.Identity{UID: "uid-1", Email: "ana@example.com"})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_PlaceOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &stubService{}
		handler := checkout.NewHandler(service)

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/enviar-pedido", strings.NewReader(orderBody)))
		rec := httptest.NewRecorder()

		handler.PlaceOrder(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, map[string]any{"success": true}, decodeBody(t, rec))
		require.Equal(t, "ana@example.com", service.buyer)
		require.Len(t, service.request.Products, 1)
		require.Equal(t, 2, service.request.Products[0].Quantity)
		require.Equal(t, "20.00", service.request.Total)
	})

	t.Run("invalid json is a 500 with details", func(t *testing.T) {
		service := &stubService{}
		handler := checkout.NewHandler(service)

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/enviar-pedido", strings.NewReader("{")))
		rec := httptest.NewRecorder()

		handler.PlaceOrder(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "No se pudo procesar el pedido.", body["error"])
		require.Contains(t, body["details"], "cuerpo JSON inválido")
		require.False(t, service.called)
	})

	t.Run("stock error surfaces in details", func(t *testing.T) {
		service := &stubService{
			placeFn: func(ctx context.Context, request checkout.Request, buyer string) (checkout.Order, error) {
				return checkout.Order{}, &checkout.InsufficientStockError{Name: "Mouse", Available: 2, Requested: 5}
			},
		}
		handler := checkout.NewHandler(service)

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/enviar-pedido", strings.NewReader(orderBody)))
		rec := httptest.NewRecorder()

		handler.PlaceOrder(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "Lo sentimos, solo quedan 2 unidades de Mouse.", body["details"])
	})

	t.Run("email error surfaces in details", func(t *testing.T) {
		service := &stubService{
			placeFn: func(ctx context.Context, request checkout.Request, buyer string) (checkout.Order, error) {
				return checkout.Order{}, errors.New("no se pudo enviar el correo de confirmación: 401")
			},
		}
		handler := checkout.NewHandler(service)

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/enviar-pedido", strings.NewReader(orderBody)))
		rec := httptest.NewRecorder()

		handler.PlaceOrder(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, decodeBody(t, rec)["details"], "correo")
	})
}

func TestRegisterRoutes(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		service := &stubService{}
		router := chi.NewRouter()
		deny := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		}
		checkout.RegisterRoutes(router, checkout.NewHandler(service), deny)

		req := httptest.NewRequest(http.MethodPost, "/enviar-pedido", strings.NewReader(orderBody))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, service.called)
	})

	t.Run("get not allowed", func(t *testing.T) {
		router := chi.NewRouter()
		checkout.RegisterRoutes(router, checkout.NewHandler(&stubService{}), func(next http.Handler) http.Handler { return next })

		req := httptest.NewRequest(http.MethodGet, "/enviar-pedido", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
