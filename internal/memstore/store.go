// Package memstore es el backend en memoria: catálogo y stock transaccional
// sin dependencias externas. Sirve para correr la API en local y en tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/products"
)

// Store guarda productos en un map protegido por mutex.
// Las transacciones toman el mutex completo: se serializan.
type Store struct {
	mu       sync.Mutex
	products map[string]products.Product
	newID    func() string
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products: make(map[string]products.Product),
		newID:    uuid.NewString,
	}
}

// Seed carga productos tal cual (con su id).
func (store *Store) Seed(items ...products.Product) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, item := range items {
		store.products[item.ID] = item
	}
}

// Ping implementa health.Pinger.
func (store *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Insert implementa products.Repository.
func (store *Store) Insert(ctx context.Context, input products.CreateProductInput) (products.Product, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	product := products.Product{
		ID:          store.newID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}
	store.products[product.ID] = product
	return product, nil
}

// List implementa products.Repository. Mismo orden que Postgres: nombre, id.
func (store *Store) List(ctx context.Context) ([]products.Product, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	out := make([]products.Product, 0, len(store.products))
	for _, product := range store.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetByID implementa products.Repository.
func (store *Store) GetByID(ctx context.Context, id string) (products.Product, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	product, ok := store.products[id]
	if !ok {
		return products.Product{}, products.ErrorNotFound
	}
	return product, nil
}

// RunInTx implementa checkout.Store. Los descuentos quedan en staged y se
// aplican solo si fn termina sin error.
func (store *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx checkout.Tx) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	tx := &memTx{store: store, staged: make(map[string]int)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for id, quantity := range tx.staged {
		product := store.products[id]
		product.Stock -= quantity
		store.products[id] = product
	}
	return nil
}

type memTx struct {
	store  *Store
	staged map[string]int
}

func (tx *memTx) Stock(ctx context.Context, id string) (int, error) {
	product, ok := tx.store.products[id]
	if !ok {
		return 0, products.ErrorNotFound
	}
	return product.Stock - tx.staged[id], nil
}

func (tx *memTx) Decrement(ctx context.Context, id string, quantity int) error {
	if _, ok := tx.store.products[id]; !ok {
		return products.ErrorNotFound
	}
	tx.staged[id] += quantity
	return nil
}
