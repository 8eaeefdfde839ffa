package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lelo88/tienda-golang/internal/auth"
)

type credentialFlags struct {
	email    string
	password string
}

func (flags *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.email, "email", "", "correo")
	cmd.Flags().StringVar(&flags.password, "password", "", "contraseña (si falta se lee de stdin)")
	_ = cmd.MarkFlagRequired("email")
}

// credentials completa la contraseña desde in cuando no vino por flag.
func (flags *credentialFlags) credentials(in io.Reader) (auth.Credentials, error) {
	password := flags.password
	if password == "" {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return auth.Credentials{}, err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	return auth.Credentials{Email: flags.email, Password: password}, nil
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "registro",
		Short: "Crea una cuenta",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			credentials, err := flags.credentials(cmd.InOrStdin())
			if err != nil {
				return err
			}
			account, err := e.api.Register(cmd.Context(), credentials)
			if err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), account.Message)
			return nil
		}),
	}
	flags.register(cmd)
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	flags := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda las cookies",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			credentials, err := flags.credentials(cmd.InOrStdin())
			if err != nil {
				return err
			}
			session, err := e.api.Login(cmd.Context(), credentials)
			if err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), session.Message)
			return nil
		}),
	}
	flags.register(cmd)
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			ctx := cmd.Context()
			apiErr := e.api.Logout(ctx)
			// Las cookies locales se borran aunque el servidor no responda.
			if err := e.local.ClearCookies(ctx); err != nil {
				return err
			}
			if apiErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "aviso: el servidor no confirmó el logout: %v\n", apiErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
			return nil
		}),
	}
}
