package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lelo88/tienda-golang/internal/products"
)

// ProductRepository implementa products.Repository. El id es el id del documento.
type ProductRepository struct {
	client *firestore.Client
}

// NewProductRepository crea el repositorio de productos.
func NewProductRepository(client *firestore.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

// Insert crea un documento con id autogenerado.
func (repository *ProductRepository) Insert(ctx context.Context, input products.CreateProductInput) (products.Product, error) {
	ref := repository.client.Collection(products.Collection).NewDoc()
	if _, err := ref.Create(ctx, productToData(input)); err != nil {
		return products.Product{}, fmt.Errorf("firestore: crear producto: %w", err)
	}

	return products.Product{
		ID:          ref.ID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}, nil
}

// List lee la colección completa. Se ordena en memoria: OrderBy descartaría
// los documentos sin campo nombre.
func (repository *ProductRepository) List(ctx context.Context) ([]products.Product, error) {
	iter := repository.client.Collection(products.Collection).Documents(ctx)
	defer iter.Stop()

	out := make([]products.Product, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore: listar productos: %w", err)
		}
		product, err := productFromData(doc.Ref.ID, doc.Data())
		if err != nil {
			return nil, err
		}
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

// GetByID lee un documento.
func (repository *ProductRepository) GetByID(ctx context.Context, id string) (products.Product, error) {
	snap, err := repository.client.Collection(products.Collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return products.Product{}, products.ErrorNotFound
		}
		return products.Product{}, fmt.Errorf("firestore: leer producto %s: %w", id, err)
	}
	if snap == nil || !snap.Exists() {
		return products.Product{}, products.ErrorNotFound
	}
	return productFromData(snap.Ref.ID, snap.Data())
}

// productToData guarda precio y stock como números, igual que el
// formulario original, para que otros clientes puedan leerlos.
func productToData(input products.CreateProductInput) map[string]any {
	price, _ := input.Price.Float64()

	var image any
	if input.ImageURL != nil {
		image = *input.ImageURL
	}

	return map[string]any{
		"nombre":      input.Name,
		"descripcion": input.Description,
		"precio":      price,
		"categoria":   input.Category,
		"url_imagen":  image,
		"stock":       int64(input.Stock),
	}
}

func productFromData(id string, data map[string]any) (products.Product, error) {
	product := products.Product{ID: id}
	product.Name, _ = data["nombre"].(string)
	product.Description, _ = data["descripcion"].(string)
	product.Category, _ = data["categoria"].(string)

	if url, ok := data["url_imagen"].(string); ok && strings.TrimSpace(url) != "" {
		product.ImageURL = &url
	}

	price, err := decimalValue(data["precio"])
	if err != nil {
		return products.Product{}, fmt.Errorf("firestore: producto %s: precio inválido: %w", id, err)
	}
	product.Price = price
	product.Stock = intValue(data["stock"])

	return product, nil
}

func decimalValue(raw any) (decimal.Decimal, error) {
	switch value := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(value), nil
	case int64:
		return decimal.NewFromInt(value), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(value))
	default:
		return decimal.Zero, fmt.Errorf("tipo %T", raw)
	}
}

// intValue lee stock; si falta o no es numérico cuenta como 0.
func intValue(raw any) int {
	switch value := raw.(type) {
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}
