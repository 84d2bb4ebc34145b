package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/konsumhq/konsum/pkg/config"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// Callers must not be able to tell the two cases apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator resolves credentials into the entitlements granted to the
// caller. Implementations are the credential backend collaborator; the
// gateway never persists credentials itself.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) ([]string, error)
}

// ConfigAuthenticator verifies credentials against the bcrypt hashes from the
// users section of the configuration.
type ConfigAuthenticator struct {
	users map[string]config.User
}

var _ Authenticator = (*ConfigAuthenticator)(nil)

func NewConfigAuthenticator(cfg *config.Config) *ConfigAuthenticator {
	return &ConfigAuthenticator{users: cfg.Auth.Users}
}

func (a *ConfigAuthenticator) Authenticate(ctx context.Context, username, password string) ([]string, error) {
	user, ok := a.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	entitlements := make([]string, len(user.Entitlements))
	copy(entitlements, user.Entitlements)

	return entitlements, nil
}
