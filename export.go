package keymint

import (
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// writeArtifact writes data to path, creating missing parent directories
// and overwriting any existing file. Filesystem errors surface unmodified.
func writeArtifact(path string, data []byte, mode os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, mode)
}

// WriteCertificatePEM writes the certificate to path as a standard PEM
// block: base64 wrapped at 64 columns between BEGIN/END CERTIFICATE
// delimiters, with a trailing newline.
func WriteCertificatePEM(cert *x509.Certificate, path string) error {
	if err := writeArtifact(path, []byte(CertToPEM(cert)), 0644); err != nil {
		return fmt.Errorf("writing certificate PEM: %w", err)
	}
	return nil
}

// WriteKeystore writes serialized keystore bytes to path with owner-only
// permissions.
func WriteKeystore(path string, data []byte) error {
	if err := writeArtifact(path, data, 0600); err != nil {
		return fmt.Errorf("writing keystore: %w", err)
	}
	return nil
}

// WriteChainPKCS7 writes the certificate chain to path as a certs-only
// PKCS#7 bundle.
func WriteChainPKCS7(certs []*x509.Certificate, path string) error {
	der, err := EncodePKCS7(certs)
	if err != nil {
		return fmt.Errorf("encoding PKCS#7 chain: %w", err)
	}
	if err := writeArtifact(path, der, 0644); err != nil {
		return fmt.Errorf("writing PKCS#7 chain: %w", err)
	}
	return nil
}
