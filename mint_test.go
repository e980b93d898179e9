package keymint

import (
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMintEndToEndJKS(t *testing.T) {
	keyDER, certDER, _, devCert := developerIdentityDER(t)
	dir := t.TempDir()
	certOut := filepath.Join(dir, "keys", "developer-cert.pem")
	ksOut := filepath.Join(dir, "keys", "trial-signing.jks")
	password := []byte("s3cret")

	res, err := Mint(Request{
		PrivateKey:     keyDER,
		Certificate:    certDER,
		Password:       password,
		Alias:          "trial",
		ValidityDays:   30,
		CertificateOut: certOut,
		KeystoreOut:    ksOut,
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// Developer certificate PEM artifact.
	pemData, err := os.ReadFile(certOut)
	if err != nil {
		t.Fatalf("read PEM: %v", err)
	}
	if !strings.HasPrefix(string(pemData), "-----BEGIN CERTIFICATE-----") {
		t.Error("PEM file does not start with BEGIN CERTIFICATE")
	}
	exported, err := ParseDERCertificate(pemData)
	if err != nil {
		t.Fatalf("reparse PEM: %v", err)
	}
	if !exported.Equal(devCert) {
		t.Error("exported certificate is not the developer certificate")
	}

	// Trial keystore artifact.
	ksData, err := os.ReadFile(ksOut)
	if err != nil {
		t.Fatalf("read keystore: %v", err)
	}
	key, chain, err := DecodeJKSKey(ksData, password, "trial")
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	leaf := chain[0]
	if !key.(*rsa.PrivateKey).PublicKey.Equal(leaf.PublicKey) {
		t.Error("keystore key does not match leaf certificate")
	}
	if err := leaf.CheckSignatureFrom(devCert); err != nil {
		t.Errorf("leaf not signed by developer: %v", err)
	}
	if leaf.Subject.CommonName != DefaultSubject {
		t.Errorf("subject = %q, want %q", leaf.Subject.CommonName, DefaultSubject)
	}

	// notAfter approximately 30 days out.
	if d := time.Until(leaf.NotAfter); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Errorf("NotAfter %v not ~30 days from now", leaf.NotAfter)
	}

	if res.SerialNumber != leaf.SerialNumber.String() {
		t.Errorf("result serial = %s, want %s", res.SerialNumber, leaf.SerialNumber)
	}
	if res.KeystorePath != ksOut || res.CertificatePath != certOut {
		t.Error("result paths do not match request")
	}
}

func TestMintEndToEndPKCS12(t *testing.T) {
	keyDER, certDER, _, devCert := developerIdentityDER(t)
	dir := t.TempDir()
	ksOut := filepath.Join(dir, "trial-signing.p12")
	password := []byte("s3cret")

	_, err := Mint(Request{
		PrivateKey:     keyDER,
		Certificate:    certDER,
		Password:       password,
		Alias:          "trial",
		ValidityDays:   7,
		Format:         FormatPKCS12,
		CertificateOut: filepath.Join(dir, "developer-cert.pem"),
		KeystoreOut:    ksOut,
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	data, err := os.ReadFile(ksOut)
	if err != nil {
		t.Fatalf("read keystore: %v", err)
	}
	_, leaf, caCerts, err := DecodePKCS12(data, password)
	if err != nil {
		t.Fatalf("decode PKCS#12: %v", err)
	}
	if err := leaf.CheckSignatureFrom(devCert); err != nil {
		t.Errorf("leaf not signed by developer: %v", err)
	}
	if len(caCerts) != 1 || !caCerts[0].Equal(devCert) {
		t.Error("CA chain is not the developer certificate")
	}
}

func TestMintMissingCredentialsAggregated(t *testing.T) {
	dir := t.TempDir()

	_, err := Mint(Request{ValidityDays: 30})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("want ErrMissingCredential, got %v", err)
	}
	for _, want := range []string{
		"developer private key",
		"developer certificate",
		"keystore password",
		"key alias",
		"certificate output path",
		"keystore output path",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not name %q: %v", want, err)
		}
	}

	// No partial writes.
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("files written despite missing credentials: %v", entries)
	}
}

func TestMintInvalidValidityFailsBeforeWrites(t *testing.T) {
	keyDER, certDER, _, _ := developerIdentityDER(t)
	dir := t.TempDir()
	certOut := filepath.Join(dir, "developer-cert.pem")

	_, err := Mint(Request{
		PrivateKey:     keyDER,
		Certificate:    certDER,
		Password:       []byte("s3cret"),
		Alias:          "trial",
		ValidityDays:   0,
		CertificateOut: certOut,
		KeystoreOut:    filepath.Join(dir, "trial-signing.jks"),
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}

	if _, statErr := os.Stat(certOut); !os.IsNotExist(statErr) {
		t.Error("PEM file written despite invalid validity")
	}
}

func TestMintMismatchedIdentity(t *testing.T) {
	keyDER, _, _, _ := developerIdentityDER(t)
	_, otherCertDER, _, _ := developerIdentityDER(t)
	dir := t.TempDir()

	_, err := Mint(Request{
		PrivateKey:     keyDER,
		Certificate:    otherCertDER,
		Password:       []byte("s3cret"),
		Alias:          "trial",
		ValidityDays:   30,
		CertificateOut: filepath.Join(dir, "developer-cert.pem"),
		KeystoreOut:    filepath.Join(dir, "trial-signing.jks"),
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("want ErrConfiguration, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJKS, false},
		{"jks", FormatJKS, false},
		{"JKS", FormatJKS, false},
		{"pkcs12", FormatPKCS12, false},
		{"p12", FormatPKCS12, false},
		{"pfx", FormatPKCS12, false},
		{"pem", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("ParseFormat(%q): want ErrConfiguration, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}
