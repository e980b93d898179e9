package keymint

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"
)

// serialLimit bounds certificate serial numbers to 128 bits per RFC 5280.
var serialLimit = new(big.Int).Lsh(big.NewInt(1), 128)

// IssuanceRequest describes one certificate to be issued: the subject it is
// for, how long it is valid, and the identity that signs it. Pure input
// value; the issuer never mutates it.
type IssuanceRequest struct {
	Subject      string
	ValidityDays int
	IssuerCert   *x509.Certificate
	IssuerKey    *rsa.PrivateKey
}

// Validate checks the request before any cryptographic work is attempted.
func (r IssuanceRequest) Validate() error {
	if r.ValidityDays <= 0 {
		return fmt.Errorf("%w: validity days must be positive, got %d", ErrConfiguration, r.ValidityDays)
	}
	if r.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrConfiguration)
	}
	if r.IssuerCert == nil || r.IssuerKey == nil {
		return fmt.Errorf("%w: issuer certificate and key are required", ErrConfiguration)
	}
	return nil
}

// Issue builds and signs an X.509 code-signing certificate binding pub to
// the request's subject, chained to the issuer certificate. The validity
// window is [now, now + ValidityDays].
func Issue(req IssuanceRequest, pub *rsa.PublicKey) (*x509.Certificate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: generating serial number: %v", ErrCryptoProvider, err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: req.Subject},
		NotBefore:    now,
		NotAfter:     now.AddDate(0, 0, req.ValidityDays),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, req.IssuerCert, pub, req.IssuerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signing certificate: %v", ErrCryptoProvider, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: reparsing issued certificate: %v", ErrCryptoProvider, err)
	}
	return cert, nil
}

// IssueChain issues a certificate for pub and returns the two-element chain
// [leaf, issuer], leaf first. Keystore consumers expect the end-entity
// certificate at index 0.
func IssueChain(req IssuanceRequest, pub *rsa.PublicKey) ([]*x509.Certificate, error) {
	leaf, err := Issue(req, pub)
	if err != nil {
		return nil, err
	}
	return []*x509.Certificate{leaf, req.IssuerCert}, nil
}
