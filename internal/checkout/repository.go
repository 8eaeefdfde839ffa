package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Lelo88/tienda-golang/internal/products"
)

// TxBeginner es lo mínimo que PostgresStore necesita del pool.
// *pgxpool.Pool y pgxmock lo implementan.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implementa Store sobre Postgres.
// Las filas se bloquean con FOR UPDATE, así dos pedidos concurrentes
// sobre el mismo producto se serializan.
type PostgresStore struct {
	database TxBeginner
}

// NewPostgresStore crea el store transaccional de Postgres.
func NewPostgresStore(database TxBeginner) *PostgresStore {
	return &PostgresStore{database: database}
}

// RunInTx implementa Store.
func (store *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, err := store.database.Begin(ctx)
	if err != nil {
		return fmt.Errorf("fallo al iniciar la transacción: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, &postgresTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("fallo al confirmar la transacción: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

const (
	selectStockForUpdate = `SELECT stock FROM productos WHERE id = $1 FOR UPDATE`
	decrementStock       = `UPDATE productos SET stock = stock - $2, updated_at = now() WHERE id = $1`
)

func (t *postgresTx) Stock(ctx context.Context, id string) (int, error) {
	var stock int
	if err := t.tx.QueryRow(ctx, selectStockForUpdate, id).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, products.ErrorNotFound
		}
		return 0, fmt.Errorf("fallo al leer stock de %s: %w", id, err)
	}
	return stock, nil
}

func (t *postgresTx) Decrement(ctx context.Context, id string, quantity int) error {
	tag, err := t.tx.Exec(ctx, decrementStock, id, quantity)
	if err != nil {
		return fmt.Errorf("fallo al descontar stock de %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return products.ErrorNotFound
	}
	return nil
}
