package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/client"
)

// unknownBuyer se envía cuando no hay cookie de email.
const unknownBuyer = "Desconocido"

func newOrderCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pedido",
		Short: "Finaliza el pedido con el contenido del carrito",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			ctx := cmd.Context()

			store, err := e.cart(ctx)
			if err != nil {
				return err
			}
			if store.Len() == 0 {
				return checkout.ErrorEmptyCart
			}

			email, err := client.SessionEmail(ctx, e.local)
			if err != nil {
				return err
			}
			if email == "" {
				email = unknownBuyer
			}

			err = e.api.PlaceOrder(ctx, checkout.Request{
				Products:  store.Lines(),
				Total:     store.Total().StringFixed(2),
				UserEmail: email,
			})
			if err != nil {
				var orderErr *client.OrderError
				if errors.As(err, &orderErr) {
					return fmt.Errorf("⚠️ Hubo un problema: %s", orderErr.Error())
				}
				return fmt.Errorf("⚠️ Hubo un problema: %w", err)
			}

			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("el pedido se envió pero no se pudo vaciar el carrito: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "¡Pedido enviado correctamente! El stock ha sido actualizado.")
			return nil
		}),
	}
}
