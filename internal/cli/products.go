package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Lelo88/tienda-golang/internal/products"
)

// Categorías sugeridas por el formulario de alta.
var knownCategories = []string{"electronica", "oficina", "accesorios", "muebles", "otro"}

func newProductsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "productos",
		Short: "Lista el catálogo",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			list, err := e.api.ListProducts(cmd.Context())
			if err != nil {
				return fmt.Errorf("no se pudo obtener el catálogo: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No se encontraron artículos.")
				return nil
			}
			return printCatalog(out, list)
		}),
	}
}

func printCatalog(out io.Writer, list []products.Product) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMBRE\tCATEGORÍA\tPRECIO\tSTOCK")
	for _, product := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", product.ID, product.Name, categoryLabel(product.Category), money(product.Price), stockLabel(product.Stock))
	}
	return tw.Flush()
}

func stockLabel(stock int) string {
	if stock <= 0 {
		return "Agotado"
	}
	return fmt.Sprint(stock)
}

func newProductCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "producto",
		Short: "Consulta o crea productos",
	}
	cmd.AddCommand(newProductShowCommand(opts))
	cmd.AddCommand(newProductCreateCommand(opts))
	return cmd
}

func newProductShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ver <id>",
		Short: "Muestra un producto",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			product, err := e.api.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", product.Name, product.ID)
			if product.Description != "" {
				fmt.Fprintln(out, product.Description)
			}
			fmt.Fprintf(out, "Categoría: %s\n", categoryLabel(product.Category))
			fmt.Fprintf(out, "Precio: %s\n", money(product.Price))
			fmt.Fprintf(out, "Stock: %s\n", stockLabel(product.Stock))
			if product.ImageURL != nil {
				fmt.Fprintf(out, "Imagen: %s\n", *product.ImageURL)
			}
			return nil
		}),
	}
}

type createFlags struct {
	name        string
	description string
	price       string
	category    string
	stock       int
	imageURL    string
	imagePath   string
}

func newProductCreateCommand(opts *RootOptions) *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "crear",
		Short: "Crea un producto (requiere sesión)",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			input, err := flags.input()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if flags.imagePath != "" {
				file, err := os.Open(flags.imagePath)
				if err != nil {
					return err
				}
				url, err := e.api.UploadImage(ctx, flags.imagePath, file)
				file.Close()
				if err != nil {
					return fmt.Errorf("no se pudo subir la imagen: %w", err)
				}
				input.ImageURL = &url
			}

			product, err := e.api.CreateProduct(ctx, input)
			if err != nil {
				return fmt.Errorf("Fallo en la creación del producto: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "¡Producto creado con éxito! ID: %s\n", product.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&flags.name, "nombre", "", "nombre del producto")
	cmd.Flags().StringVar(&flags.description, "descripcion", "", "descripción")
	cmd.Flags().StringVar(&flags.price, "precio", "", "precio, ej. 15.50")
	cmd.Flags().StringVar(&flags.category, "categoria", knownCategories[0], "categoría ("+strings.Join(knownCategories, ", ")+")")
	cmd.Flags().IntVar(&flags.stock, "stock", 0, "unidades disponibles")
	cmd.Flags().StringVar(&flags.imageURL, "url-imagen", "", "URL de una imagen ya publicada")
	cmd.Flags().StringVar(&flags.imagePath, "imagen", "", "archivo de imagen a subir antes de crear")

	return cmd
}

// input valida lo mismo que el formulario antes de llamar a la API.
func (flags *createFlags) input() (products.CreateProductInput, error) {
	name := strings.TrimSpace(flags.name)
	category := strings.TrimSpace(flags.category)
	rawPrice := strings.TrimSpace(flags.price)
	if name == "" || rawPrice == "" || category == "" {
		return products.CreateProductInput{}, errorMissingFields
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return products.CreateProductInput{}, fmt.Errorf("precio inválido %q", rawPrice)
	}

	input := products.CreateProductInput{
		Name:        name,
		Description: strings.TrimSpace(flags.description),
		Price:       price,
		Category:    category,
		Stock:       flags.stock,
	}
	if url := strings.TrimSpace(flags.imageURL); url != "" {
		input.ImageURL = &url
	}
	return input, nil
}

var errorMissingFields = errors.New("Faltan campos obligatorios: nombre, precio y categoría.")
