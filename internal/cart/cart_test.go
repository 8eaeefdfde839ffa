package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Lelo88/tienda-golang/internal/products"
)

type failingStorage struct {
	*MemoryStorage
	setErr    error
	removeErr error
	getErr    error
}

func (storage *failingStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if storage.getErr != nil {
		return "", false, storage.getErr
	}
	return storage.MemoryStorage.GetItem(ctx, key)
}

func (storage *failingStorage) SetItem(ctx context.Context, key, value string) error {
	if storage.setErr != nil {
		return storage.setErr
	}
	return storage.MemoryStorage.SetItem(ctx, key, value)
}

func (storage *failingStorage) RemoveItem(ctx context.Context, key string) error {
	if storage.removeErr != nil {
		return storage.removeErr
	}
	return storage.MemoryStorage.RemoveItem(ctx, key)
}

func product(id, name, price string, stock int) products.Product {
	return products.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Category: "cocina", Stock: stock}
}

func openEmpty(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	store, err := Open(context.Background(), storage)
	require.NoError(t, err)
	return store, storage
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("new product enters with quantity one", func(t *testing.T) {
		store, storage := openEmpty(t)

		item, err := store.Add(ctx, product("a", "Taza", "7.00", 3))

		require.NoError(t, err)
		require.Equal(t, 1, item.Quantity)
		raw, ok, _ := storage.GetItem(ctx, StorageKey)
		require.True(t, ok)
		require.Contains(t, raw, `"cantidad":1`)
	})

	t.Run("existing product increments up to stock", func(t *testing.T) {
		store, _ := openEmpty(t)
		taza := product("a", "Taza", "7.00", 2)

		_, err := store.Add(ctx, taza)
		require.NoError(t, err)
		item, err := store.Add(ctx, taza)
		require.NoError(t, err)
		require.Equal(t, 2, item.Quantity)

		_, err = store.Add(ctx, taza)
		var limitErr *StockLimitError
		require.ErrorAs(t, err, &limitErr)
		require.Equal(t, "Lo sentimos, solo hay 2 unidades disponibles de este producto y ya las tienes en tu carrito.", err.Error())
		require.Equal(t, 2, store.Items()[0].Quantity)
	})

	t.Run("sold out product is rejected", func(t *testing.T) {
		store, _ := openEmpty(t)

		_, err := store.Add(ctx, product("a", "Taza", "7.00", 0))

		require.ErrorIs(t, err, ErrorSoldOut)
		require.Equal(t, 0, store.Len())
	})

	t.Run("failed write keeps previous cart", func(t *testing.T) {
		storage := &failingStorage{MemoryStorage: NewMemoryStorage()}
		store, err := Open(ctx, storage)
		require.NoError(t, err)
		_, err = store.Add(ctx, product("a", "Taza", "7.00", 5))
		require.NoError(t, err)

		storage.setErr = errors.New("disco lleno")
		_, err = store.Add(ctx, product("a", "Taza", "7.00", 5))
		require.ErrorContains(t, err, "disco lleno")
		_, err = store.Add(ctx, product("b", "Plato", "3.00", 5))
		require.Error(t, err)

		require.Len(t, store.Items(), 1)
		require.Equal(t, 1, store.Items()[0].Quantity)
	})
}

func TestStore_RemoveTotalAndLines(t *testing.T) {
	ctx := context.Background()
	store, storage := openEmpty(t)

	taza := product("a", "Taza", "7.25", 5)
	_, _ = store.Add(ctx, taza)
	_, _ = store.Add(ctx, taza)
	_, _ = store.Add(ctx, product("b", "Lámpara", "15.00", 1))

	require.Equal(t, "29.50", store.Total().StringFixed(2))

	lines := store.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, "a", lines[0].ID)
	require.Equal(t, 2, lines[0].Quantity)
	require.Equal(t, "Lámpara", lines[1].Name)

	require.NoError(t, store.Remove(ctx, "a"))
	require.Equal(t, "15.00", store.Total().StringFixed(2))

	require.NoError(t, store.Remove(ctx, "no-existe"))
	require.Equal(t, 1, store.Len())

	var saved []Item
	raw, _, _ := storage.GetItem(ctx, StorageKey)
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	require.Len(t, saved, 1)
	require.Equal(t, "b", saved[0].ID)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the stored key", func(t *testing.T) {
		store, storage := openEmpty(t)
		_, _ = store.Add(ctx, product("a", "Taza", "7.00", 1))

		require.NoError(t, store.Clear(ctx))

		_, ok, _ := storage.GetItem(ctx, StorageKey)
		require.False(t, ok)
		require.Equal(t, 0, store.Len())
		require.True(t, store.Total().IsZero())
	})

	t.Run("storage error keeps items", func(t *testing.T) {
		storage := &failingStorage{MemoryStorage: NewMemoryStorage()}
		store, err := Open(ctx, storage)
		require.NoError(t, err)
		_, _ = store.Add(ctx, product("a", "Taza", "7.00", 1))

		storage.removeErr = errors.New("bloqueado")
		require.Error(t, store.Clear(ctx))
		require.Equal(t, 1, store.Len())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("reloads saved cart", func(t *testing.T) {
		storage := NewMemoryStorage()
		first, err := Open(ctx, storage)
		require.NoError(t, err)
		_, err = first.Add(ctx, product("a", "Taza", "7.00", 4))
		require.NoError(t, err)

		second, err := Open(ctx, storage)
		require.NoError(t, err)
		require.Len(t, second.Items(), 1)
		require.True(t, decimal.RequireFromString("7").Equal(second.Items()[0].Price))
		require.Equal(t, 4, second.Items()[0].Stock)
	})

	t.Run("accepts numeric prices", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.SetItem(ctx, StorageKey, `[{"id":"a","nombre":"Taza","precio":7.5,"stock":2,"cantidad":1}]`))

		store, err := Open(ctx, storage)
		require.NoError(t, err)
		require.Equal(t, "7.50", store.Total().StringFixed(2))
	})

	t.Run("corrupt value", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.SetItem(ctx, StorageKey, "{no es json"))

		_, err := Open(ctx, storage)
		require.ErrorContains(t, err, "carrito guardado inválido")
	})

	t.Run("storage error", func(t *testing.T) {
		storage := &failingStorage{MemoryStorage: NewMemoryStorage(), getErr: errors.New("sin permisos")}

		_, err := Open(ctx, storage)
		require.ErrorContains(t, err, "sin permisos")
	})
}

func TestStore_ExceedsStock(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.SetItem(ctx, StorageKey,
		`[{"id":"a","nombre":"Taza","precio":"7","stock":1,"cantidad":3},{"id":"b","nombre":"Plato","precio":"2","stock":0,"cantidad":2},{"id":"c","nombre":"Vaso","precio":"1","stock":5,"cantidad":2}]`))

	store, err := Open(ctx, storage)
	require.NoError(t, err)

	over := store.ExceedsStock()
	require.Len(t, over, 1)
	require.Equal(t, "a", over[0].ID)
}
