// Package internal holds orchestration around the keymint core: credential
// sources, configuration, logging, and the issuance ledger.
package internal

import (
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/quietbit/keymint"
)

// Environment variables read in CI mode.
const (
	EnvPrivateKey = "DEV_PRIVATE_KEY"
	EnvCert       = "DEV_CERT"
	EnvPassword   = "TRIAL_KEYSTORE_PASSWORD"
	EnvAlias      = "TRIAL_KEY_ALIAS"
	EnvValidDays  = "TRIAL_KEYSTORE_VALID_DAYS"
)

// CredentialSource supplies the developer identity as raw key and
// certificate bytes. The core never learns where the pair came from.
type CredentialSource interface {
	Credentials() (keyDER, certDER []byte, err error)
}

// EnvSource reads the developer identity from base64-encoded environment
// variables (CI mode).
type EnvSource struct{}

// Credentials decodes DEV_PRIVATE_KEY and DEV_CERT. Both must be set.
func (EnvSource) Credentials() ([]byte, []byte, error) {
	keyB64 := os.Getenv(EnvPrivateKey)
	certB64 := os.Getenv(EnvCert)
	if keyB64 == "" || certB64 == "" {
		var missing []string
		if keyB64 == "" {
			missing = append(missing, EnvPrivateKey)
		}
		if certB64 == "" {
			missing = append(missing, EnvCert)
		}
		return nil, nil, fmt.Errorf("%w: environment variables not set: %v", keymint.ErrMissingCredential, missing)
	}

	keyDER, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s is not valid base64: %v", keymint.ErrKeyFormat, EnvPrivateKey, err)
	}
	certDER, err := base64.StdEncoding.DecodeString(certB64)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s is not valid base64: %v", keymint.ErrCertificateFormat, EnvCert, err)
	}
	return keyDER, certDER, nil
}

// KeystoreSource reads the developer identity from a JKS keystore file
// (local mode).
type KeystoreSource struct {
	Path     string
	Password []byte
	Alias    string
}

// Credentials loads the keystore entry and reduces it to the same
// (key, certificate) DER pair the env source produces. The entry's leaf
// certificate is the developer certificate.
func (s KeystoreSource) Credentials() ([]byte, []byte, error) {
	if s.Path == "" || s.Alias == "" || len(s.Password) == 0 {
		return nil, nil, fmt.Errorf("%w: developer keystore path, alias, and password are required", keymint.ErrMissingCredential)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading developer keystore: %w", err)
	}

	key, chain, err := keymint.DecodeJKSKey(data, s.Password, s.Alias)
	if err != nil {
		return nil, nil, err
	}
	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("%w: entry %q has no certificate chain", keymint.ErrKeyStore, s.Alias)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", keymint.ErrKeyFormat, err)
	}
	return keyDER, chain[0].Raw, nil
}
