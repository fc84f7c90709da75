package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/tenantd/internal/auth"
	"github.com/wolfeidau/tenantd/internal/directory"
	"github.com/wolfeidau/tenantd/internal/docstore"
	"github.com/wolfeidau/tenantd/internal/docstore/postgres"
)

type Globals struct {
	Config  string
	Debug   bool
	Version string
}

// Config is the YAML configuration file. The memory backend keeps state for
// the life of the process only; it exists for demos and smoke testing.
type Config struct {
	Storage struct {
		Backend    string `yaml:"backend"`     // "memory" or "postgres"
		ConnString string `yaml:"conn_string"` // postgres only
	} `yaml:"storage"`
	Token struct {
		SigningKeyFile string `yaml:"signing_key_file"` // PEM ECDSA private key
		TTL            string `yaml:"ttl"`              // Go duration, default 24h
	} `yaml:"token"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	return &cfg, nil
}

func (c *Config) tokenTTL() (time.Duration, error) {
	if c.Token.TTL == "" {
		return 24 * time.Hour, nil
	}
	ttl, err := time.ParseDuration(c.Token.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid token ttl %q: %w", c.Token.TTL, err)
	}
	return ttl, nil
}

// env is the wired-up service graph a command runs against.
type env struct {
	store   docstore.DocumentStore
	admins  *directory.AdminDirectory
	orgs    *directory.OrganizationDirectory
	cleanup func()
}

func newEnv(ctx context.Context, globals *Globals) (*env, *Config, error) {
	cfg, err := loadConfig(globals.Config)
	if err != nil {
		return nil, nil, err
	}

	e := &env{cleanup: func() {}}

	switch cfg.Storage.Backend {
	case "memory":
		e.store = docstore.NewMemoryStore()
	case "postgres":
		pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{ConnString: cfg.Storage.ConnString})
		if err != nil {
			return nil, nil, err
		}
		e.store = postgres.New(pool)
		e.cleanup = pool.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	e.admins = directory.NewAdminDirectory(e.store, auth.NewBcryptHasher())
	e.orgs = directory.NewOrganizationDirectory(e.store, e.admins)

	if err := e.admins.Init(ctx); err != nil {
		e.cleanup()
		return nil, nil, err
	}
	if err := e.orgs.Init(ctx); err != nil {
		e.cleanup()
		return nil, nil, err
	}

	return e, cfg, nil
}

func newAccessControl(e *env, cfg *Config) (*auth.AccessControl, error) {
	keyPEM, err := os.ReadFile(cfg.Token.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	issuer, err := auth.NewJWTIssuer(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	ttl, err := cfg.tokenTTL()
	if err != nil {
		return nil, err
	}

	return auth.NewAccessControl(e.admins, issuer, ttl), nil
}
