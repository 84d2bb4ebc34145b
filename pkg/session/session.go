package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/config"
	"github.com/konsumhq/konsum/pkg/entitlement"
)

// ErrNotEntitled is returned by Issue when the resolved entitlements lack the
// base entitlement. The credentials may be valid, the login still fails.
var ErrNotEntitled = errors.New("missing base entitlement")

// Claims is the signed token payload. Entitlements travel comma-joined.
type Claims struct {
	Name         string `json:"name,omitempty"`
	Entitlements string `json:"entitlements,omitempty"`
	jwt.RegisteredClaims
}

// TokenSet is the response of a successful authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Expires      int    `json:"expires"`
}

// Identity is the immutable per-request view of a verified token. It is
// decoded once by the authentication gate and only read afterwards.
type Identity struct {
	Name         string
	Entitlements entitlement.Set
}

func (i *Identity) HasEntitlement(name string) bool {
	return i != nil && i.Entitlements.Has(name)
}

// Issue mints the access/refresh token pair for an authenticated user.
// The refresh token deliberately carries empty claims; there is no
// redemption flow for it yet.
func Issue(cfg *config.Config, username string, entitlements entitlement.Set) (*TokenSet, error) {
	if !entitlements.Has(entitlement.Base) {
		return nil, ErrNotEntitled
	}

	if cfg.PrivateKey() == nil {
		return nil, errors.New("no private key configured")
	}

	expires := DurationSeconds(cfg.Auth.JWT.Expiry)

	now := time.Now()
	registered := jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(now),
	}
	if expires > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(expires) * time.Second))
	}
	if cfg.Auth.JWT.Audience != "" {
		registered.Audience = jwt.ClaimStrings{cfg.Auth.JWT.Audience}
	}

	claims := Claims{
		Name:             username,
		Entitlements:     entitlements.Join(),
		RegisteredClaims: registered,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(cfg.PrivateKey())
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{RegisteredClaims: registered}).SignedString(cfg.PrivateKey())
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign refresh token")
	}

	return &TokenSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		Expires:      expires,
	}, nil
}

// Parse verifies a bearer token from an Authorization header value and
// decodes the identity it carries. Signature, expiry and, when configured,
// audience are all validated.
func Parse(cfg *config.Config, authHeader string) (*Identity, error) {
	if authHeader == "" {
		return nil, errors.New("missing authorization token")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 {
		return nil, errors.New("invalid number of components in authorization header")
	}
	if !strings.EqualFold(tokenParts[0], "Bearer") {
		return nil, errors.New("expected bearer token")
	}

	if cfg.PublicKey() == nil {
		return nil, errors.New("no public key configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if cfg.Auth.JWT.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Auth.JWT.Audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenParts[1], claims, func(token *jwt.Token) (interface{}, error) {
		return cfg.PublicKey(), nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify token")
	}

	return &Identity{
		Name:         claims.Name,
		Entitlements: entitlement.ParseSet(claims.Entitlements),
	}, nil
}
