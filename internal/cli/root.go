// Package cli implementa el comando tienda: catálogo, sesión, carrito y pedidos.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Lelo88/tienda-golang/internal/cart"
	"github.com/Lelo88/tienda-golang/internal/client"
	"github.com/Lelo88/tienda-golang/internal/localstore"
)

// RootOptions son los flags globales.
type RootOptions struct {
	ConfigPath string
	Server     string
	DataPath   string

	// HTTPClient permite inyectar transporte en tests.
	HTTPClient *http.Client
}

// NewRootCommand crea el comando raíz del CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tienda",
		Short:         "Tienda - catálogo y pedidos desde la terminal",
		Long:          "Consulta el catálogo, maneja tu carrito y confirma pedidos contra la API de la tienda.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "archivo de configuración (default $HOME/.config/tienda/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "URL de la API (pisa TIENDA_SERVER y server_url)")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", "", "archivo SQLite con carrito y sesión")

	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newProductCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newCartCommand(opts))
	cmd.AddCommand(newOrderCommand(opts))

	return cmd
}

// env es lo que cada comando necesita; se abre por ejecución.
type env struct {
	settings Settings
	api      *client.Client
	local    *localstore.Store
}

func (opts *RootOptions) open() (*env, error) {
	settings, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}

	local, err := localstore.Open(settings.DataPath)
	if err != nil {
		return nil, err
	}

	api, err := client.New(settings.ServerURL, opts.HTTPClient, local)
	if err != nil {
		_ = local.Close()
		return nil, err
	}

	return &env{settings: settings, api: api, local: local}, nil
}

func (e *env) Close() error {
	return e.local.Close()
}

func (e *env) cart(ctx context.Context) (*cart.Store, error) {
	return cart.Open(ctx, e.local)
}

// withEnv abre el entorno, corre fn y lo cierra.
func withEnv(opts *RootOptions, fn func(cmd *cobra.Command, args []string, e *env) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := opts.open()
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

var errorNoSession = errors.New("Tu sesión ha expirado o no has iniciado sesión. Ejecutá `tienda login`.")
