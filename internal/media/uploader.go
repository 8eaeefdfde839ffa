package media

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// MaxImageSize es el tamaño máximo de imagen aceptado.
const MaxImageSize = 5 << 20

// ObjectPrefix es la carpeta de las imágenes de productos.
const ObjectPrefix = "productos/"

var ErrorUnsupportedType = errors.New("el archivo debe ser una imagen (jpeg, png, gif o webp)")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader valida el contenido y lo sube al ObjectStore.
type Uploader struct {
	store ObjectStore
	newID func() string
}

// NewUploader crea el uploader.
func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store, newID: uuid.NewString}
}

// Upload detecta el tipo por contenido (no confía en el header del cliente)
// y devuelve la URL pública.
func (uploader *Uploader) Upload(ctx context.Context, body io.Reader) (string, error) {
	reader := bufio.NewReaderSize(body, 512)
	head, err := reader.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}

	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrorUnsupportedType
	}

	object := ObjectPrefix + uploader.newID() + ext
	return uploader.store.Put(ctx, object, contentType, reader)
}
