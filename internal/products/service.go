package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (no HTTP). El handler los traduce a status codes.
var (
	ErrorInvalidInput  = errors.New("datos inválidos")
	ErrorMissingFields = fmt.Errorf("%w: faltan campos obligatorios: nombre, precio y categoría", ErrorInvalidInput)
	ErrorNegativeStock = fmt.Errorf("%w: el stock no puede ser negativo", ErrorInvalidInput)
	ErrorNegativePrice = fmt.Errorf("%w: el precio no puede ser negativo", ErrorInvalidInput)
	ErrorNotFound      = errors.New("producto no encontrado")
)

// Repository es lo que el service necesita de la persistencia.
// Lo implementan Postgres (este paquete), Firestore y memstore.
type Repository interface {
	Insert(ctx context.Context, input CreateProductInput) (Product, error)
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
}

// Service contiene las reglas del catálogo.
type Service struct {
	repository Repository
}

// NewService crea un service de productos.
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// Create valida presencia de campos obligatorios y persiste el producto.
// Un precio cero cuenta como ausente, igual que en el formulario.
func (service *Service) Create(ctx context.Context, input CreateProductInput) (Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))

	if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		if url == "" {
			input.ImageURL = nil
		} else {
			input.ImageURL = &url
		}
	}

	if input.Price.IsNegative() {
		return Product{}, ErrorNegativePrice
	}
	if input.Name == "" || input.Price.IsZero() || input.Category == "" {
		return Product{}, ErrorMissingFields
	}
	if input.Stock < 0 {
		return Product{}, ErrorNegativeStock
	}

	product, err := service.repository.Insert(ctx, input)
	if err != nil {
		return Product{}, fmt.Errorf("fallo en la creación del producto: %w", err)
	}
	return product, nil
}

// List devuelve el catálogo completo. Sin paginación ni filtros.
func (service *Service) List(ctx context.Context) ([]Product, error) {
	return service.repository.List(ctx)
}

// Get obtiene un producto por ID.
func (service *Service) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrorNotFound
	}
	return service.repository.GetByID(ctx, id)
}
