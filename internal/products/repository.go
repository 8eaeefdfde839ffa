package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DB es el subconjunto de *pgxpool.Pool que usa el repositorio.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository accede a la tabla productos.
// Contiene SQL y mapeo DB → modelo.
type PostgresRepository struct {
	database DB
	newID    func() string
}

// NewPostgresRepository crea un repositorio de productos sobre Postgres.
func NewPostgresRepository(database DB) *PostgresRepository {
	return &PostgresRepository{database: database, newID: uuid.NewString}
}

const productColumns = `id, nombre, descripcion, precio::text, categoria, url_imagen, stock`

// Insert crea un producto. El id lo asigna la aplicación, no la DB.
func (repository *PostgresRepository) Insert(ctx context.Context, input CreateProductInput) (Product, error) {
	const query = `
		INSERT INTO productos (id, nombre, descripcion, precio, categoria, url_imagen, stock)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING ` + productColumns + `;
	`

	row := repository.database.QueryRow(ctx, query,
		repository.newID(), input.Name, input.Description, input.Price.StringFixed(2), input.Category, input.ImageURL, input.Stock)
	return scanProduct(row)
}

// List devuelve todos los productos ordenados por nombre.
func (repository *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	const query = `SELECT ` + productColumns + ` FROM productos ORDER BY nombre, id;`

	rows, err := repository.database.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID busca un producto por id.
func (repository *PostgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	const query = `SELECT ` + productColumns + ` FROM productos WHERE id = $1;`

	product, err := scanProduct(repository.database.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrorNotFound
		}
		return Product{}, err
	}
	return product, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		product Product
		price   string
	)
	if err := row.Scan(&product.ID, &product.Name, &product.Description, &price, &product.Category, &product.ImageURL, &product.Stock); err != nil {
		return Product{}, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, err
	}
	product.Price = parsed
	return product, nil
}
