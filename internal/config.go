package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/quietbit/keymint"
)

// Default output locations, matching the resource layout the keystore is
// embedded into downstream.
var (
	DefaultCertificateOut = filepath.Join("src", "main", "resources", "keys", "developer-cert.pem")
	DefaultKeystoreOut    = filepath.Join("src", "main", "resources", "keys", "trial-signing.jks")
)

// DeveloperKeystoreConfig locates the developer identity for local mode.
// The password is deliberately not a config field; it is prompted for or
// taken from the environment at run time.
type DeveloperKeystoreConfig struct {
	Path  string `yaml:"path"`
	Alias string `yaml:"alias"`
}

// Config is the optional YAML configuration file. Every field has a
// default or can be overridden by flags and environment variables.
type Config struct {
	Alias             string                   `yaml:"alias,omitempty"`
	ValidDays         int                      `yaml:"validDays,omitempty"`
	Subject           string                   `yaml:"subject,omitempty"`
	Format            string                   `yaml:"format,omitempty"`
	CertificateOut    string                   `yaml:"certificateOut,omitempty"`
	KeystoreOut       string                   `yaml:"keystoreOut,omitempty"`
	LedgerPath        string                   `yaml:"ledger,omitempty"`
	DeveloperKeystore *DeveloperKeystoreConfig `yaml:"developerKeystore,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		CertificateOut: DefaultCertificateOut,
		KeystoreOut:    DefaultKeystoreOut,
		Format:         string(keymint.FormatJKS),
	}
}

// LoadConfig reads a YAML configuration file and fills unset fields with
// defaults. An empty path returns the defaults without touching the
// filesystem.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.CertificateOut == "" {
		cfg.CertificateOut = DefaultCertificateOut
	}
	if cfg.KeystoreOut == "" {
		cfg.KeystoreOut = DefaultKeystoreOut
	}
	if cfg.Format == "" {
		cfg.Format = string(keymint.FormatJKS)
	}
	return cfg, nil
}

// ApplyEnv overlays the TRIAL_* environment variables onto the config.
// Environment wins over the file; flags are applied later and win over both.
func (c *Config) ApplyEnv() error {
	if alias := os.Getenv(EnvAlias); alias != "" {
		c.Alias = alias
	}
	if days := os.Getenv(EnvValidDays); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", keymint.ErrConfiguration, EnvValidDays, days)
		}
		c.ValidDays = n
	}
	return nil
}
