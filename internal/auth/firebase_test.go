package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeUsers struct {
	record *fbauth.UserRecord
	err    error
}

func (users *fakeUsers) CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	return users.record, users.err
}

type fakeTokens struct {
	token *fbauth.Token
	err   error
	seen  string
}

func (tokens *fakeTokens) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	tokens.seen = idToken
	return tokens.token, tokens.err
}

func TestFirebaseProvider_SignUp(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &FirebaseProvider{users: &fakeUsers{record: &fbauth.UserRecord{
			UserInfo: &fbauth.UserInfo{UID: "uid-1", Email: "ana@example.com"},
		}}}

		identity, err := provider.SignUp(context.Background(), "ana@example.com", "secreto")

		require.NoError(t, err)
		require.Equal(t, Identity{UID: "uid-1", Email: "ana@example.com"}, identity)
	})

	t.Run("generic error wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		provider := &FirebaseProvider{users: &fakeUsers{err: boom}}

		_, err := provider.SignUp(context.Background(), "ana@example.com", "secreto")

		require.ErrorIs(t, err, boom)
	})

	t.Run("empty record", func(t *testing.T) {
		provider := &FirebaseProvider{users: &fakeUsers{record: &fbauth.UserRecord{}}}

		_, err := provider.SignUp(context.Background(), "ana@example.com", "secreto")

		require.Error(t, err)
	})
}

func TestFirebaseProvider_SignIn(t *testing.T) {
	t.Run("success uses verified token", func(t *testing.T) {
		tokens := &fakeTokens{token: &fbauth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "Ana@example.com"}}}
		provider := &FirebaseProvider{
			tokens: tokens,
			verifyPassword: func(ctx context.Context, email, password string) (string, error) {
				return "id-token", nil
			},
		}

		identity, err := provider.SignIn(context.Background(), "ana@example.com", "secreto")

		require.NoError(t, err)
		require.Equal(t, "id-token", tokens.seen)
		require.Equal(t, "uid-1", identity.UID)
		require.Equal(t, "Ana@example.com", identity.Email)
	})

	t.Run("bad password", func(t *testing.T) {
		provider := &FirebaseProvider{
			verifyPassword: func(ctx context.Context, email, password string) (string, error) {
				return "", &googleapi.Error{Code: http.StatusBadRequest, Message: "INVALID_LOGIN_CREDENTIALS"}
			},
		}

		_, err := provider.SignIn(context.Background(), "ana@example.com", "mala")

		require.ErrorIs(t, err, ErrorInvalidCredentials)
	})

	t.Run("transport error", func(t *testing.T) {
		provider := &FirebaseProvider{
			verifyPassword: func(ctx context.Context, email, password string) (string, error) {
				return "", errors.New("dial tcp: timeout")
			},
		}

		_, err := provider.SignIn(context.Background(), "ana@example.com", "secreto")

		require.Error(t, err)
		require.NotErrorIs(t, err, ErrorInvalidCredentials)
	})

	t.Run("token rejected", func(t *testing.T) {
		provider := &FirebaseProvider{
			tokens: &fakeTokens{err: errors.New("expired")},
			verifyPassword: func(ctx context.Context, email, password string) (string, error) {
				return "id-token", nil
			},
		}

		_, err := provider.SignIn(context.Background(), "ana@example.com", "secreto")

		require.Error(t, err)
	})
}

func TestIsCredentialError(t *testing.T) {
	require.True(t, isCredentialError(fmt.Errorf("wrap: %w", &googleapi.Error{Message: "EMAIL_NOT_FOUND"})))
	require.False(t, isCredentialError(&googleapi.Error{Message: "QUOTA_EXCEEDED"}))
	require.False(t, isCredentialError(errors.New("INVALID_PASSWORD")))
}
