package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/konsumhq/konsum/pkg/config"
)

func TestConfigAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Auth.Users = map[string]config.User{
		"alice": {
			Password:     string(hash),
			Entitlements: []string{"konsum", "konsum.category.add"},
		},
	}

	a := NewConfigAuthenticator(cfg)

	entitlements, err := a.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"konsum", "konsum.category.add"}, entitlements)

	_, err = a.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown user fails identically to a wrong password
	_, err = a.Authenticate(context.Background(), "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
