package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lelo88/tienda-golang/internal/cart"
	"github.com/Lelo88/tienda-golang/internal/client"
)

func newCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carrito",
		Short: "Muestra el carrito",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			store, err := e.cart(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd, store)
			return nil
		}),
	}

	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))
	return cmd
}

func printCart(cmd *cobra.Command, store *cart.Store) {
	out := cmd.OutOrStdout()
	items := store.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "El carrito está vacío.")
		return
	}

	over := map[string]bool{}
	for _, item := range store.ExceedsStock() {
		over[item.ID] = true
	}

	fmt.Fprintln(out, "Resumen de Compra")
	for _, item := range items {
		fmt.Fprintf(out, "- %s (x%d)  %s c/u  %s\n", item.Name, item.Quantity, money(item.Price), money(item.Subtotal()))
		if over[item.ID] {
			fmt.Fprintln(out, "  ⚠️ Supera el stock disponible")
		}
	}
	fmt.Fprintf(out, "Total: %s\n", money(store.Total()))
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "agregar <id>",
		Short: "Agrega una unidad del producto",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			ctx := cmd.Context()

			ok, err := client.HasSession(ctx, e.local)
			if err != nil {
				return err
			}
			if !ok {
				return errorNoSession
			}

			product, err := e.api.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}

			store, err := e.cart(ctx)
			if err != nil {
				return err
			}
			if _, err := store.Add(ctx, product); err != nil {
				var limitErr *cart.StockLimitError
				if errors.As(err, &limitErr) || errors.Is(err, cart.ErrorSoldOut) {
					return err
				}
				return fmt.Errorf("no se pudo guardar el carrito: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s añadido al carrito.\n", product.Name)
			return nil
		}),
	}
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quitar <id>",
		Short: "Quita el producto del carrito",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			store, err := e.cart(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printCart(cmd, store)
			return nil
		}),
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vaciar",
		Short: "Vacía el carrito",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			store, err := e.cart(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "El carrito está vacío.")
			return nil
		}),
	}
}
