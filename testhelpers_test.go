package keymint

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

// generateDeveloperIdentity creates a self-signed RSA-2048 developer
// certificate and its private key for testing.
func generateDeveloperIdentity(t *testing.T) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate developer key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Developer Root"},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create developer cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse developer cert: %v", err)
	}
	return key, cert
}

// developerIdentityDER returns the developer identity as the raw byte pair
// the workflow consumes: PKCS#8 key DER and certificate DER.
func developerIdentityDER(t *testing.T) (keyDER, certDER []byte, key *rsa.PrivateKey, cert *x509.Certificate) {
	t.Helper()

	key, cert = generateDeveloperIdentity(t)
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal developer key: %v", err)
	}
	return keyDER, cert.Raw, key, cert
}
