package keymint

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/smallstep/pkcs7"
	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// EncodePKCS12 creates a PKCS#12/PFX keystore holding the private key, leaf
// certificate, and CA chain under the given friendly name. Returns the
// DER-encoded PKCS#12 data. Modern encoding (AES/PBKDF2); older Java
// runtimes that need RC2 are out of scope here.
func EncodePKCS12(entry KeystoreEntry, password []byte) ([]byte, error) {
	if entry.Alias == "" {
		return nil, fmt.Errorf("%w: empty key alias", ErrConfiguration)
	}
	if len(entry.Chain) == 0 {
		return nil, fmt.Errorf("%w: empty certificate chain", ErrKeyStore)
	}

	data, err := gopkcs12.Modern.Encode(entry.Key, entry.Chain[0], entry.Chain[1:], string(password))
	if err != nil {
		return nil, fmt.Errorf("%w: encoding PKCS#12: %v", ErrKeyStore, err)
	}
	return data, nil
}

// DecodePKCS12 decodes a PKCS#12/PFX keystore and returns the private key,
// leaf certificate, and CA certificates.
func DecodePKCS12(pfxData, password []byte) (crypto.PrivateKey, *x509.Certificate, []*x509.Certificate, error) {
	key, leaf, caCerts, err := gopkcs12.DecodeChain(pfxData, string(password))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decoding PKCS#12: %v", ErrKeyStore, err)
	}
	return key, leaf, caCerts, nil
}

// EncodePKCS7 creates a certs-only PKCS#7/P7B bundle from a certificate
// chain. Returns the DER-encoded SignedData structure.
func EncodePKCS7(certs []*x509.Certificate) ([]byte, error) {
	if len(certs) == 0 {
		return nil, errors.New("no certificates to encode")
	}
	var derBytes []byte
	for _, cert := range certs {
		derBytes = append(derBytes, cert.Raw...)
	}
	return pkcs7.DegenerateCertificate(derBytes)
}
