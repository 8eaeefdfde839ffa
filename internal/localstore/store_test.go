package localstore

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Lelo88/tienda-golang/internal/cart"
	"github.com/Lelo88/tienda-golang/internal/products"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datos", "tienda.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestOpen_Pragmas(t *testing.T) {
	store, _ := openTestStore(t)

	var mode string
	require.NoError(t, store.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
}

func TestStore_LocalStorage(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	_, ok, err := store.GetItem(ctx, "carrito")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SetItem(ctx, "carrito", "[]"))
	require.NoError(t, store.SetItem(ctx, "carrito", `[{"id":"a"}]`))

	value, ok, err := store.GetItem(ctx, "carrito")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"a"}]`, value)

	require.NoError(t, store.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err = reopened.GetItem(ctx, "carrito")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"a"}]`, value)

	require.NoError(t, reopened.RemoveItem(ctx, "carrito"))
	_, ok, err = reopened.GetItem(ctx, "carrito")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_BacksCart(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	first, err := cart.Open(ctx, store)
	require.NoError(t, err)
	_, err = first.Add(ctx, products.Product{ID: "a", Name: "Taza", Price: decimal.RequireFromString("7.00"), Stock: 2})
	require.NoError(t, err)

	second, err := cart.Open(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 1, second.Len())
	require.Equal(t, "7.00", second.Total().StringFixed(2))
}

func TestStore_Cookies(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SaveCookies(ctx, []*http.Cookie{
		{Name: "user_session", Value: "token", MaxAge: 3600},
		{Name: "user_email", Value: "ana@example.com", MaxAge: 3600},
	}))

	value, ok, err := store.Cookie(ctx, "user_email")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ana@example.com", value)

	cookies, err := store.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	t.Run("expired cookies read as absent", func(t *testing.T) {
		now = now.Add(time.Hour)

		_, ok, err := store.Cookie(ctx, "user_session")
		require.NoError(t, err)
		require.False(t, ok)

		cookies, err := store.Cookies(ctx)
		require.NoError(t, err)
		require.Empty(t, cookies)
	})

	t.Run("negative max age deletes", func(t *testing.T) {
		require.NoError(t, store.SaveCookies(ctx, []*http.Cookie{{Name: "user_email", Value: "x", Expires: now.Add(time.Minute)}}))
		_, ok, err := store.Cookie(ctx, "user_email")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.SaveCookies(ctx, []*http.Cookie{{Name: "user_email", MaxAge: -1}}))
		_, ok, err = store.Cookie(ctx, "user_email")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.SaveCookies(ctx, []*http.Cookie{{Name: "user_session", Value: "t"}}))
		require.NoError(t, store.ClearCookies(ctx))
		cookies, err := store.Cookies(ctx)
		require.NoError(t, err)
		require.Empty(t, cookies)
	})
}
