package keymint

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"
)

// Format selects the serialization of the minted keystore.
type Format string

const (
	FormatJKS    Format = "jks"
	FormatPKCS12 Format = "pkcs12"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "jks":
		return FormatJKS, nil
	case "pkcs12", "p12", "pfx":
		return FormatPKCS12, nil
	default:
		return "", fmt.Errorf("%w: unknown keystore format %q", ErrConfiguration, s)
	}
}

// DefaultSubject is the common name placed in the trial certificate when
// the request does not override it.
const DefaultSubject = "Trial License Issuer"

// DefaultKeyBits is the RSA key size of the trial key pair.
const DefaultKeyBits = 2048

// Request carries every input of one minting run. It is a plain value;
// the workflow reads no ambient configuration and mutates nothing.
type Request struct {
	PrivateKey  []byte // developer private key, DER or PEM
	Certificate []byte // developer certificate, DER or PEM
	Password    []byte // protects the keystore and its key entry
	Alias       string // keystore entry alias

	Subject      string // trial certificate CN; DefaultSubject when empty
	ValidityDays int
	Format       Format // FormatJKS when empty
	KeyBits      int    // DefaultKeyBits when zero

	CertificateOut string // developer certificate PEM destination
	KeystoreOut    string // trial keystore destination
}

// Result summarizes a successful mint for logging, the issuance ledger,
// and optional extra artifacts. It carries only public material; never key
// bytes or the password.
type Result struct {
	SerialNumber    string
	Subject         string
	Issuer          string
	NotBefore       time.Time
	NotAfter        time.Time
	Format          Format
	Chain           []*x509.Certificate // issued chain, leaf first
	CertificatePath string
	KeystorePath    string
}

// validate checks the request eagerly, before any file or RNG work.
// Missing required inputs are aggregated into a single error naming all of
// them, so one failed run reports the full list.
func (r Request) validate() error {
	var missing []string
	if len(r.PrivateKey) == 0 {
		missing = append(missing, "developer private key")
	}
	if len(r.Certificate) == 0 {
		missing = append(missing, "developer certificate")
	}
	if len(r.Password) == 0 {
		missing = append(missing, "keystore password")
	}
	if r.Alias == "" {
		missing = append(missing, "key alias")
	}
	if r.CertificateOut == "" {
		missing = append(missing, "certificate output path")
	}
	if r.KeystoreOut == "" {
		missing = append(missing, "keystore output path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}

	if r.ValidityDays <= 0 {
		return fmt.Errorf("%w: validity days must be positive, got %d", ErrConfiguration, r.ValidityDays)
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	return nil
}

// Mint runs the issuance workflow once: decode the developer identity,
// export its certificate as PEM, generate a fresh trial key pair, sign a
// time-bounded code-signing certificate chained to the developer identity,
// and write the password-protected keystore.
//
// The two writes are not atomic as a pair: a failure after the PEM export
// leaves the PEM file behind. The tool is a re-runnable build step, so a
// retry simply overwrites both artifacts.
func Mint(req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	format, _ := ParseFormat(string(req.Format))

	devKey, err := ParseRSAPrivateKey(req.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("loading developer private key: %w", err)
	}
	devCert, err := ParseDERCertificate(req.Certificate)
	if err != nil {
		return nil, fmt.Errorf("loading developer certificate: %w", err)
	}
	if !devKey.PublicKey.Equal(devCert.PublicKey) {
		return nil, fmt.Errorf("%w: developer private key does not match certificate", ErrConfiguration)
	}

	if err := WriteCertificatePEM(devCert, req.CertificateOut); err != nil {
		return nil, err
	}

	bits := req.KeyBits
	if bits == 0 {
		bits = DefaultKeyBits
	}
	trialKey, err := GenerateRSAKey(bits)
	if err != nil {
		return nil, err
	}

	subject := req.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	chain, err := IssueChain(IssuanceRequest{
		Subject:      subject,
		ValidityDays: req.ValidityDays,
		IssuerCert:   devCert,
		IssuerKey:    devKey,
	}, &trialKey.PublicKey)
	if err != nil {
		return nil, err
	}

	entry := KeystoreEntry{Alias: req.Alias, Key: trialKey, Chain: chain}
	var ksData []byte
	switch format {
	case FormatPKCS12:
		ksData, err = EncodePKCS12(entry, req.Password)
	default:
		ksData, err = EncodeJKS([]KeystoreEntry{entry}, req.Password)
	}
	if err != nil {
		return nil, err
	}

	if err := WriteKeystore(req.KeystoreOut, ksData); err != nil {
		return nil, err
	}

	leaf := chain[0]
	return &Result{
		SerialNumber:    leaf.SerialNumber.String(),
		Subject:         leaf.Subject.CommonName,
		Issuer:          leaf.Issuer.CommonName,
		NotBefore:       leaf.NotBefore,
		NotAfter:        leaf.NotAfter,
		Format:          format,
		Chain:           chain,
		CertificatePath: req.CertificateOut,
		KeystorePath:    req.KeystoreOut,
	}, nil
}
