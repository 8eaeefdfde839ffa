package products

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeRepo implementa Repository para testing.
type fakeRepo struct {
	insertCalled bool
	insertInput  CreateProductInput
	insertErr    error

	listCalled   bool
	listErr      error
	listProducts []Product

	getCalled  bool
	getID      string
	getErr     error
	getProduct Product
}

func (repo *fakeRepo) Insert(ctx context.Context, input CreateProductInput) (Product, error) {
	repo.insertCalled = true
	repo.insertInput = input
	if repo.insertErr != nil {
		return Product{}, repo.insertErr
	}
	return Product{
		ID:          "x",
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
	}, nil
}

func (repo *fakeRepo) List(ctx context.Context) ([]Product, error) {
	repo.listCalled = true
	if repo.listErr != nil {
		return nil, repo.listErr
	}
	return repo.listProducts, nil
}

func (repo *fakeRepo) GetByID(ctx context.Context, id string) (Product, error) {
	repo.getCalled = true
	repo.getID = id
	if repo.getErr != nil {
		return Product{}, repo.getErr
	}
	return repo.getProduct, nil
}

func TestService_Create(t *testing.T) {
	valid := func() CreateProductInput {
		return CreateProductInput{
			Name:     "  Mouse  ",
			Price:    decimal.RequireFromString("10.50"),
			Category: " Accesorios ",
			Stock:    5,
		}
	}

	t.Run("normalizes and persists", func(t *testing.T) {
		repo := &fakeRepo{}
		service := NewService(repo)

		product, err := service.Create(context.Background(), valid())

		require.NoError(t, err)
		require.True(t, repo.insertCalled)
		require.Equal(t, "Mouse", repo.insertInput.Name)
		require.Equal(t, "accesorios", repo.insertInput.Category)
		require.Equal(t, "x", product.ID)
		require.Nil(t, product.ImageURL)
	})

	t.Run("blank image url becomes nil", func(t *testing.T) {
		repo := &fakeRepo{}
		service := NewService(repo)

		input := valid()
		blank := "   "
		input.ImageURL = &blank

		_, err := service.Create(context.Background(), input)

		require.NoError(t, err)
		require.Nil(t, repo.insertInput.ImageURL)
	})

	t.Run("image url trimmed", func(t *testing.T) {
		repo := &fakeRepo{}
		service := NewService(repo)

		input := valid()
		url := " https://example.com/a.png "
		input.ImageURL = &url

		_, err := service.Create(context.Background(), input)

		require.NoError(t, err)
		require.NotNil(t, repo.insertInput.ImageURL)
		require.Equal(t, "https://example.com/a.png", *repo.insertInput.ImageURL)
	})

	tests := []struct {
		name    string
		mutate  func(*CreateProductInput)
		wantErr error
	}{
		{name: "missing name", mutate: func(in *CreateProductInput) { in.Name = "  " }, wantErr: ErrorMissingFields},
		{name: "missing category", mutate: func(in *CreateProductInput) { in.Category = "" }, wantErr: ErrorMissingFields},
		{name: "zero price", mutate: func(in *CreateProductInput) { in.Price = decimal.Zero }, wantErr: ErrorMissingFields},
		{name: "negative price", mutate: func(in *CreateProductInput) { in.Price = decimal.NewFromInt(-1) }, wantErr: ErrorNegativePrice},
		{name: "negative stock", mutate: func(in *CreateProductInput) { in.Stock = -1 }, wantErr: ErrorNegativeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			service := NewService(repo)

			input := valid()
			tt.mutate(&input)

			_, err := service.Create(context.Background(), input)

			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, ErrorInvalidInput)
			require.False(t, repo.insertCalled)
		})
	}

	t.Run("zero stock allowed", func(t *testing.T) {
		repo := &fakeRepo{}
		service := NewService(repo)

		input := valid()
		input.Stock = 0

		_, err := service.Create(context.Background(), input)

		require.NoError(t, err)
	})

	t.Run("repository error wrapped", func(t *testing.T) {
		repoErr := errors.New("db down")
		repo := &fakeRepo{insertErr: repoErr}
		service := NewService(repo)

		_, err := service.Create(context.Background(), valid())

		require.ErrorIs(t, err, repoErr)
		require.Contains(t, err.Error(), "fallo en la creación del producto")
	})
}

func TestService_List(t *testing.T) {
	repo := &fakeRepo{listProducts: []Product{{ID: "a"}, {ID: "b"}}}
	service := NewService(repo)

	products, err := service.List(context.Background())

	require.NoError(t, err)
	require.True(t, repo.listCalled)
	require.Len(t, products, 2)
}

func TestService_Get(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		repo := &fakeRepo{}
		service := NewService(repo)

		_, err := service.Get(context.Background(), "  ")

		require.ErrorIs(t, err, ErrorNotFound)
		require.False(t, repo.getCalled)
	})

	t.Run("trims id", func(t *testing.T) {
		repo := &fakeRepo{getProduct: Product{ID: "abc"}}
		service := NewService(repo)

		product, err := service.Get(context.Background(), " abc ")

		require.NoError(t, err)
		require.Equal(t, "abc", repo.getID)
		require.Equal(t, "abc", product.ID)
	})
}

func TestProduct_Available(t *testing.T) {
	require.True(t, Product{Stock: 1}.Available())
	require.False(t, Product{Stock: 0}.Available())
}
