// Package firestore implementa el catálogo y el stock transaccional sobre
// la colección productos de Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Lelo88/tienda-golang/internal/products"
)

// NewClient abre el cliente de Firestore. Sin credentialsFile usa ADC
// (o FIRESTORE_EMULATOR_HOST si está definido).
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("firestore: project id vacío")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient (project=%s): %w", projectID, err)
	}
	return client, nil
}

// Pinger verifica que Firestore responda leyendo a lo sumo un documento.
type Pinger struct {
	client *firestore.Client
}

// NewPinger crea el pinger para /ready.
func NewPinger(client *firestore.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping implementa health.Pinger.
func (pinger *Pinger) Ping(ctx context.Context) error {
	iter := pinger.client.Collection(products.Collection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}
