// Package keymint mints short-lived code-signing keystores: it loads a
// developer identity (RSA private key + X.509 certificate), generates a
// fresh trial key pair, signs a time-bounded certificate for it with the
// developer key, and serializes the result as a password-protected
// keystore alongside a PEM export of the developer certificate.
package keymint

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// IsPEM returns true if the data appears to contain PEM-encoded content.
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// ParseRSAPrivateKey parses an RSA private key from DER or PEM bytes.
// DER input is tried as PKCS#8 first, then PKCS#1. PEM input additionally
// accepts OpenSSH-encoded keys via x/crypto/ssh. Keys of any other
// algorithm are rejected with ErrKeyFormat.
func ParseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	der := data
	if IsPEM(data) {
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("%w: no PEM block found", ErrKeyFormat)
		}
		if block.Type == "OPENSSH PRIVATE KEY" {
			key, err := ssh.ParseRawPrivateKey(data)
			if err != nil {
				return nil, fmt.Errorf("%w: parsing OpenSSH private key: %v", ErrKeyFormat, err)
			}
			rsaKey, ok := key.(*rsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("%w: OpenSSH key is %T, want RSA", ErrKeyFormat, key)
			}
			return rsaKey, nil
		}
		der = block.Bytes
	}

	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: PKCS#8 key is %T, want RSA", ErrKeyFormat, key)
		}
		return rsaKey, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: not PKCS#8 or PKCS#1 DER", ErrKeyFormat)
}

// ParseDERCertificate parses a single X.509 certificate from DER bytes.
// PEM input is unwrapped first.
func ParseDERCertificate(data []byte) (*x509.Certificate, error) {
	der := data
	if IsPEM(data) {
		block, _ := pem.Decode(data)
		if block == nil || block.Type != "CERTIFICATE" {
			return nil, fmt.Errorf("%w: no CERTIFICATE PEM block found", ErrCertificateFormat)
		}
		der = block.Bytes
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateFormat, err)
	}
	return cert, nil
}

// GenerateRSAKey generates a new RSA private key with the given bit size
// using the platform's cryptographically secure random source. Every call
// produces a fresh key; nothing is cached across runs.
func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: generating RSA-%d key: %v", ErrCryptoProvider, bits, err)
	}
	return key, nil
}

// CertToPEM encodes a certificate as PEM.
func CertToPEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	}))
}
