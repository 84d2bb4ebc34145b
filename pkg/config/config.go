package config

import (
	"crypto/rsa"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	DefaultPort       = 12345
	DefaultBackupPath = "/tmp/konsum.txt"
	DefaultExpiry     = "1h"

	configFileName   = "config.json"
	databaseFileName = "konsum.db"
)

// User is one entry of the credential backend. The password is a bcrypt hash.
type User struct {
	Password     string   `json:"password"`
	Entitlements []string `json:"entitlements"`
}

// JWTConfig holds the signing material for issued tokens. PrivateKey and
// PublicKey hold either inline PEM or a path to a PEM file.
type JWTConfig struct {
	PrivateKey string `json:"private"`
	PublicKey  string `json:"public"`
	Audience   string `json:"audience,omitempty"`
	Expiry     string `json:"expiresIn,omitempty"`
}

type AuthConfig struct {
	JWT   JWTConfig       `json:"jwt"`
	Users map[string]User `json:"users,omitempty"`
}

type HTTPConfig struct {
	Port int `json:"port,omitempty"`
}

type DatabaseConfig struct {
	Path string `json:"path,omitempty"`
}

type BackupConfig struct {
	Path string `json:"path,omitempty"`
}

type Config struct {
	HTTP     HTTPConfig     `json:"http,omitempty"`
	Auth     AuthConfig     `json:"auth"`
	Database DatabaseConfig `json:"database,omitempty"`
	Backup   BackupConfig   `json:"backup,omitempty"`

	// ValueListingEntitlement optionally gates GET /category/{category}/value.
	// When empty, a valid token is sufficient to read values.
	ValueListingEntitlement string `json:"valueListingEntitlement,omitempty"`

	Version string `json:"-"`

	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func Default() *Config {
	c := &Config{}
	c.HTTP.Port = DefaultPort
	c.Auth.JWT.Expiry = DefaultExpiry
	c.Backup.Path = DefaultBackupPath
	c.Database.Path = databaseFileName
	return c
}

// Load reads the configuration file at path, falling back to
// $CONFIGURATION_DIRECTORY/config.json when path is empty, and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	if path == "" {
		if dir := os.Getenv("CONFIGURATION_DIRECTORY"); dir != "" {
			path = filepath.Join(dir, configFileName)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err == nil {
			if err := json.Unmarshal(data, c); err != nil {
				return nil, errors.Wrapf(err, "failed to parse config file %s", path)
			}
		}
	}

	if err := c.applyEnvironment(); err != nil {
		return nil, err
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}
	if c.Auth.JWT.Expiry == "" {
		c.Auth.JWT.Expiry = DefaultExpiry
	}
	if c.Backup.Path == "" {
		c.Backup.Path = DefaultBackupPath
	}

	if err := c.LoadKeys(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyEnvironment() error {
	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 {
			return errors.Errorf("PORT must be a positive integer, got %q", port)
		}
		c.HTTP.Port = n
	}

	if dir := os.Getenv("STATE_DIRECTORY"); dir != "" && c.Database.Path == databaseFileName {
		c.Database.Path = filepath.Join(dir, databaseFileName)
	}

	return nil
}

// LoadKeys resolves and parses the configured RSA key pair. Either key may be
// inline PEM or the path of a PEM file.
func (c *Config) LoadKeys() error {
	if c.Auth.JWT.PrivateKey != "" {
		pem, err := resolvePEM(c.Auth.JWT.PrivateKey)
		if err != nil {
			return errors.Wrap(err, "failed to resolve private key")
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
		if err != nil {
			return errors.Wrap(err, "failed to parse private key")
		}
		c.privateKey = key
	}

	if c.Auth.JWT.PublicKey != "" {
		pem, err := resolvePEM(c.Auth.JWT.PublicKey)
		if err != nil {
			return errors.Wrap(err, "failed to resolve public key")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return errors.Wrap(err, "failed to parse public key")
		}
		c.publicKey = key
	}

	if c.privateKey != nil && c.publicKey == nil {
		c.publicKey = &c.privateKey.PublicKey
	}

	return nil
}

func resolvePEM(keyOrPath string) ([]byte, error) {
	if strings.Contains(keyOrPath, "-----BEGIN") {
		return []byte(keyOrPath), nil
	}
	return os.ReadFile(keyOrPath)
}

func (c *Config) PrivateKey() *rsa.PrivateKey {
	return c.privateKey
}

func (c *Config) PublicKey() *rsa.PublicKey {
	return c.publicKey
}
