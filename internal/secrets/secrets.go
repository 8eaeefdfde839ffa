// Package secrets resuelve valores de configuración del tipo
// sm://projects/<p>/secrets/<s>/versions/<v> contra Secret Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Prefix marca un valor como referencia a Secret Manager.
const Prefix = "sm://"

var ErrorInvalidReference = errors.New("referencia de secreto inválida")

// AccessFunc lee la versión de secreto name y devuelve su contenido.
type AccessFunc func(ctx context.Context, name string) (string, error)

// Resolver reemplaza referencias sm:// por su valor.
type Resolver struct {
	access AccessFunc
}

// NewResolver crea un resolver sobre access.
func NewResolver(access AccessFunc) *Resolver {
	return &Resolver{access: access}
}

// IsReference indica si value es una referencia sm://.
func IsReference(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), Prefix)
}

// Resolve devuelve value tal cual si no es referencia.
func (resolver *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}

	name, err := versionName(strings.TrimPrefix(strings.TrimSpace(value), Prefix))
	if err != nil {
		return "", err
	}

	secret, err := resolver.access(ctx, name)
	if err != nil {
		return "", fmt.Errorf("access secret version %s: %w", name, err)
	}
	return strings.TrimSpace(secret), nil
}

// versionName valida projects/<p>/secrets/<s>[/versions/<v>]; sin versión usa latest.
func versionName(ref string) (string, error) {
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	switch {
	case len(parts) == 4 && parts[0] == "projects" && parts[2] == "secrets":
		parts = append(parts, "versions", "latest")
	case len(parts) == 6 && parts[0] == "projects" && parts[2] == "secrets" && parts[4] == "versions":
	default:
		return "", fmt.Errorf("%w: %q", ErrorInvalidReference, ref)
	}
	for _, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%w: %q", ErrorInvalidReference, ref)
		}
	}
	return strings.Join(parts, "/"), nil
}

// SecretManagerAccess adapta el cliente de Secret Manager a AccessFunc.
func SecretManagerAccess(client *secretmanager.Client) AccessFunc {
	return func(ctx context.Context, name string) (string, error) {
		resp, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Payload == nil {
			return "", fmt.Errorf("empty payload (%s)", name)
		}
		return string(resp.Payload.Data), nil
	}
}

// NewSecretManagerResolver abre el cliente con credenciales por defecto.
// El llamador cierra el cliente devuelto.
func NewSecretManagerResolver(ctx context.Context) (*Resolver, *secretmanager.Client, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	return NewResolver(SecretManagerAccess(client)), client, nil
}
