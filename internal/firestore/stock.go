package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/products"
)

// StockStore implementa checkout.Store con RunTransaction.
// Firestore reintenta fn ante conflictos; fn no debe tener efectos externos.
type StockStore struct {
	client *firestore.Client
}

// NewStockStore crea el store transaccional de stock.
func NewStockStore(client *firestore.Client) *StockStore {
	return &StockStore{client: client}
}

// RunInTx implementa checkout.Store.
func (store *StockStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx checkout.Tx) error) error {
	return store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &stockTx{products: store.client.Collection(products.Collection), tx: tx})
	})
}

type stockTx struct {
	products *firestore.CollectionRef
	tx       *firestore.Transaction
}

func (t *stockTx) Stock(ctx context.Context, id string) (int, error) {
	snap, err := t.tx.Get(t.products.Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, products.ErrorNotFound
		}
		return 0, fmt.Errorf("firestore: leer stock de %s: %w", id, err)
	}
	if snap == nil || !snap.Exists() {
		return 0, products.ErrorNotFound
	}
	stock, _ := snap.DataAt("stock")
	return intValue(stock), nil
}

func (t *stockTx) Decrement(ctx context.Context, id string, quantity int) error {
	return t.tx.Update(t.products.Doc(id), []firestore.Update{
		{Path: "stock", Value: firestore.Increment(-quantity)},
	})
}
