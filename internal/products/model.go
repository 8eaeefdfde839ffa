package products

import "github.com/shopspring/decimal"

// Collection es el nombre de la colección (Firestore) y de la tabla (Postgres).
const Collection = "productos"

// Categories son las categorías que ofrece el formulario de alta.
// El servicio no las impone: categoria es texto libre con estos valores sugeridos.
var Categories = []string{"electronica", "oficina", "accesorios", "muebles", "otro"}

// Product es un documento de la colección productos.
// Price usa decimal para no arrastrar errores de punto flotante en los totales.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Category    string          `json:"categoria"`
	ImageURL    *string         `json:"url_imagen"`
	Stock       int             `json:"stock"`
}

// Available indica si queda al menos una unidad.
func (p Product) Available() bool {
	return p.Stock > 0
}

// CreateProductInput es el payload del formulario de alta.
type CreateProductInput struct {
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Category    string          `json:"categoria"`
	ImageURL    *string         `json:"url_imagen,omitempty"`
	Stock       int             `json:"stock"`
}
