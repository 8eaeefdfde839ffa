package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

type userCreator interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
}

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// passwordSignIn verifica email + contraseña y devuelve un ID token de Firebase.
type passwordSignIn func(ctx context.Context, email, password string) (string, error)

// FirebaseProvider registra usuarios con el Admin SDK y verifica contraseñas
// contra Identity Toolkit (el Admin SDK no verifica contraseñas).
type FirebaseProvider struct {
	users          userCreator
	tokens         idTokenVerifier
	verifyPassword passwordSignIn
}

// NewFirebaseProvider arma el provider a partir del cliente de Auth y la API key web.
func NewFirebaseProvider(ctx context.Context, client *fbauth.Client, apiKey string) (*FirebaseProvider, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit: %w", err)
	}
	return &FirebaseProvider{
		users:          client,
		tokens:         client,
		verifyPassword: identityToolkitSignIn(toolkit),
	}, nil
}

func identityToolkitSignIn(service *identitytoolkit.Service) passwordSignIn {
	return func(ctx context.Context, email, password string) (string, error) {
		resp, err := service.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
		if err != nil {
			return "", err
		}
		return resp.IdToken, nil
	}
}

// SignUp implementa Provider.
func (provider *FirebaseProvider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	record, err := provider.users.CreateUser(ctx, (&fbauth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return Identity{}, ErrorEmailInUse
		}
		return Identity{}, fmt.Errorf("firebase: fallo al crear usuario: %w", err)
	}
	if record == nil || record.UserInfo == nil {
		return Identity{}, errors.New("firebase: respuesta vacía al crear usuario")
	}
	return Identity{UID: record.UID, Email: record.Email}, nil
}

// SignIn implementa Provider.
func (provider *FirebaseProvider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	idToken, err := provider.verifyPassword(ctx, email, password)
	if err != nil {
		if isCredentialError(err) {
			return Identity{}, ErrorInvalidCredentials
		}
		return Identity{}, fmt.Errorf("identitytoolkit: %w", err)
	}

	token, err := provider.tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("firebase: token inválido: %w", err)
	}

	identity := Identity{UID: strings.TrimSpace(token.UID), Email: email}
	if raw, ok := token.Claims["email"].(string); ok && strings.TrimSpace(raw) != "" {
		identity.Email = strings.TrimSpace(raw)
	}
	if identity.UID == "" {
		return Identity{}, errors.New("firebase: token sin uid")
	}
	return identity, nil
}

var credentialErrors = []string{
	"INVALID_PASSWORD",
	"EMAIL_NOT_FOUND",
	"INVALID_LOGIN_CREDENTIALS",
	"USER_DISABLED",
	"INVALID_EMAIL",
}

func isCredentialError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range credentialErrors {
		if strings.Contains(apiErr.Message, code) {
			return true
		}
	}
	return false
}
