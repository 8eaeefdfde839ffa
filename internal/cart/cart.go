// Package cart mantiene el carrito del cliente y lo persiste en cada cambio.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/products"
)

// StorageKey es la clave bajo la que se guarda el carrito.
const StorageKey = "carrito"

var ErrorSoldOut = errors.New("Este producto se encuentra agotado.")

// StockLimitError indica que el carrito ya tiene todo el stock disponible.
type StockLimitError struct {
	Stock int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("Lo sentimos, solo hay %d unidades disponibles de este producto y ya las tienes en tu carrito.", e.Stock)
}

// Storage es un almacén clave/valor de strings, como localStorage.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Item es un producto del carrito con su cantidad. Conserva el stock
// que tenía el producto al agregarlo por primera vez.
type Item struct {
	products.Product
	Quantity int `json:"cantidad"`
}

// Subtotal es precio × cantidad.
func (item Item) Subtotal() decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Store es el carrito en memoria respaldado por Storage.
type Store struct {
	mu      sync.Mutex
	storage Storage
	items   []Item
}

// Open carga el carrito guardado. Sin valor guardado arranca vacío.
func Open(ctx context.Context, storage Storage) (*Store, error) {
	store := &Store{storage: storage}

	raw, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("leer carrito: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &store.items); err != nil {
			return nil, fmt.Errorf("carrito guardado inválido: %w", err)
		}
	}
	return store, nil
}

// Add suma una unidad de product, respetando su stock.
func (store *Store) Add(ctx context.Context, product products.Product) (Item, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	next := store.snapshot()
	index := store.indexOf(product.ID)

	switch {
	case index >= 0:
		if next[index].Quantity >= product.Stock {
			return Item{}, &StockLimitError{Stock: product.Stock}
		}
		next[index].Quantity++
	case product.Stock <= 0:
		return Item{}, ErrorSoldOut
	default:
		next = append(next, Item{Product: product, Quantity: 1})
		index = len(next) - 1
	}

	if err := store.persist(ctx, next); err != nil {
		return Item{}, err
	}
	return next[index], nil
}

// Remove quita el producto id. Si no estaba, el carrito queda igual.
func (store *Store) Remove(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	next := make([]Item, 0, len(store.items))
	for _, item := range store.items {
		if item.ID != id {
			next = append(next, item)
		}
	}
	return store.persist(ctx, next)
}

// Clear vacía el carrito y borra la clave guardada.
func (store *Store) Clear(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.storage.RemoveItem(ctx, StorageKey); err != nil {
		return fmt.Errorf("vaciar carrito: %w", err)
	}
	store.items = nil
	return nil
}

// Items devuelve una copia de las líneas en orden de inserción.
func (store *Store) Items() []Item {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot()
}

func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.items)
}

// Total es la suma de precio × cantidad.
func (store *Store) Total() decimal.Decimal {
	store.mu.Lock()
	defer store.mu.Unlock()

	total := decimal.Zero
	for _, item := range store.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Lines arma el cuerpo del pedido.
func (store *Store) Lines() []checkout.Line {
	store.mu.Lock()
	defer store.mu.Unlock()

	lines := make([]checkout.Line, 0, len(store.items))
	for _, item := range store.items {
		lines = append(lines, checkout.Line{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return lines
}

// ExceedsStock lista los ítems cuya cantidad supera el stock guardado.
func (store *Store) ExceedsStock() []Item {
	store.mu.Lock()
	defer store.mu.Unlock()

	var out []Item
	for _, item := range store.items {
		if item.Stock > 0 && item.Quantity > item.Stock {
			out = append(out, item)
		}
	}
	return out
}

func (store *Store) indexOf(id string) int {
	for i, item := range store.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (store *Store) snapshot() []Item {
	out := make([]Item, len(store.items))
	copy(out, store.items)
	return out
}

// persist escribe next y solo entonces lo adopta.
func (store *Store) persist(ctx context.Context, next []Item) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("serializar carrito: %w", err)
	}
	if err := store.storage.SetItem(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("guardar carrito: %w", err)
	}
	store.items = next
	return nil
}
