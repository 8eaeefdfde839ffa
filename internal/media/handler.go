package media

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lelo88/tienda-golang/internal/httpx"
)

// UploaderAPI define lo que el handler necesita.
type UploaderAPI interface {
	Upload(ctx context.Context, body io.Reader) (string, error)
}

// Handler HTTP de subida de imágenes. uploader nil significa sin bucket configurado.
type Handler struct {
	uploader UploaderAPI
}

// NewHandler crea el handler.
func NewHandler(uploader UploaderAPI) *Handler {
	return &Handler{uploader: uploader}
}

// Upload maneja POST /api/imagenes (multipart, campo "imagen").
func (handler *Handler) Upload(writer http.ResponseWriter, request *http.Request) {
	if handler.uploader == nil {
		httpx.Fail(writer, request, http.StatusServiceUnavailable, "unavailable", "la subida de imágenes no está configurada")
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxImageSize+(1<<20))
	file, header, err := request.FormFile("imagen")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Fail(writer, request, http.StatusRequestEntityTooLarge, "too_large", "la imagen supera los 5 MiB")
			return
		}
		httpx.Fail(writer, request, http.StatusBadRequest, "invalid_input", "falta el archivo \"imagen\"")
		return
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		httpx.Fail(writer, request, http.StatusRequestEntityTooLarge, "too_large", "la imagen supera los 5 MiB")
		return
	}

	url, err := handler.uploader.Upload(request.Context(), file)
	if err != nil {
		if errors.Is(err, ErrorUnsupportedType) {
			httpx.Fail(writer, request, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
			return
		}
		httpx.Fail(writer, request, http.StatusInternalServerError, "internal_error", "no se pudo subir la imagen")
		return
	}

	httpx.OK(writer, request, http.StatusCreated, map[string]string{"url_imagen": url})
}

// RegisterRoutes registra la subida detrás de la sesión.
func RegisterRoutes(route chi.Router, handler *Handler, requireSession func(http.Handler) http.Handler) {
	route.With(requireSession).Post("/imagenes", handler.Upload)
}
