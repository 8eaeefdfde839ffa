package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Lelo88/tienda-golang/internal/products"
)

var (
	ErrorEmptyCart = errors.New("El carrito está vacío")
	ErrorMissingID = errors.New("El ID del producto no llegó a la API")
)

// InvalidQuantityError: la línea pide menos de una unidad.
type InvalidQuantityError struct {
	Name     string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("La cantidad de %s debe ser al menos 1.", e.Name)
}

// ProductGoneError: el producto fue borrado después de agregarse al carrito.
type ProductGoneError struct {
	ID   string
	Name string
}

func (e *ProductGoneError) Error() string {
	return fmt.Sprintf("El producto %s ya no existe en la base de datos.", e.Name)
}

// InsufficientStockError: el stock actual no alcanza para la cantidad pedida.
type InsufficientStockError struct {
	ID        string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Lo sentimos, solo quedan %d unidades de %s.", e.Available, e.Name)
}

// Tx es la vista transaccional del almacén de stock.
// Stock devuelve products.ErrorNotFound si el producto no existe.
type Tx interface {
	Stock(ctx context.Context, id string) (int, error)
	Decrement(ctx context.Context, id string, quantity int) error
}

// Store ejecuta fn dentro de una transacción. Si fn devuelve error no se
// aplica ninguna escritura y RunInTx devuelve ese mismo error.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Normalize valida la forma del carrito antes de abrir la transacción.
// Las líneas con el mismo id se suman en la posición de la primera.
func Normalize(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, ErrorEmptyCart
	}

	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		line.ID = strings.TrimSpace(line.ID)
		if line.ID == "" {
			return nil, ErrorMissingID
		}
		if line.Quantity < 1 {
			return nil, &InvalidQuantityError{Name: line.label(), Quantity: line.Quantity}
		}
		if i, ok := index[line.ID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(out)
		out = append(out, line)
	}
	return out, nil
}

// Apply corre los pasos de validación en orden y, si todos pasan,
// programa los descuentos. Primero todas las lecturas, después las escrituras.
func Apply(ctx context.Context, tx Tx, lines []Line) error {
	for _, line := range lines {
		stock, err := tx.Stock(ctx, line.ID)
		if err != nil {
			if errors.Is(err, products.ErrorNotFound) {
				return &ProductGoneError{ID: line.ID, Name: line.label()}
			}
			return err
		}
		if stock < line.Quantity {
			return &InsufficientStockError{ID: line.ID, Name: line.label(), Available: stock, Requested: line.Quantity}
		}
	}

	for _, line := range lines {
		if err := tx.Decrement(ctx, line.ID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Total suma los subtotales.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
