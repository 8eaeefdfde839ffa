// Package media sube imágenes de productos a Cloud Storage.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectStore guarda un objeto y devuelve su URL pública.
type ObjectStore interface {
	Put(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

// GCSStore implementa ObjectStore sobre un bucket de GCS.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSClient abre el cliente de Storage (ADC o archivo de credenciales).
func NewGCSClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return client, nil
}

// NewGCSStore crea el store para bucket.
func NewGCSStore(client *storage.Client, bucket string) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("media: bucket vacío")
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put implementa ObjectStore. No pisa objetos existentes.
func (store *GCSStore) Put(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	handle := store.client.Bucket(store.bucket).Object(object).If(storage.Conditions{DoesNotExist: true})
	writer := handle.NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("media: escribir %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("media: cerrar %s: %w", object, err)
	}
	return PublicURL(store.bucket, object), nil
}

// PublicURL arma la URL pública de un objeto.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", strings.TrimSpace(bucket), strings.TrimLeft(strings.TrimSpace(object), "/"))
}
