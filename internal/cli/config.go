package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration. Flags override the SETTLE_* environment.
type Config struct {
	ServerURL string `env:"SETTLE_SERVER" envDefault:"http://localhost:8080"`
	Token     string `env:"SETTLE_TOKEN"`
	TokenFile string `env:"SETTLE_TOKEN_FILE"`
	Output    string `env:"SETTLE_OUTPUT" envDefault:"text"`
	Verbose   bool   `env:"SETTLE_VERBOSE"`

	// JWTSecret and TokenTTL are only used by "token issue", which signs
	// tokens locally with the server's shared secret
	JWTSecret string        `env:"SETTLE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"SETTLE_TOKEN_TTL" envDefault:"24h"`
}

// LoadConfig reads the process environment
func LoadConfig() (*Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (*Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
	}
	return &c, nil
}

// LoadToken reads the token file unless a token was given explicitly. A
// missing file is not an error.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken writes token to the token file, readable by the user only
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".settlectl", "token")
	}
	return filepath.Join(home, ".settlectl", "token")
}
