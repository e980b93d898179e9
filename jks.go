package keymint

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
)

// KeystoreEntry is one private key with its certificate chain, stored under
// an alias. The chain must be leaf-first.
type KeystoreEntry struct {
	Alias string
	Key   crypto.PrivateKey
	Chain []*x509.Certificate
}

// EncodeJKS serializes entries into a Java KeyStore (JKS). The same password
// protects the store and every key entry (standard Java convention). An
// empty alias is ErrConfiguration; a repeated alias is ErrKeyStore.
func EncodeJKS(entries []KeystoreEntry, password []byte) ([]byte, error) {
	ks := keystore.New()
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if e.Alias == "" {
			return nil, fmt.Errorf("%w: empty key alias", ErrConfiguration)
		}
		if seen[e.Alias] {
			return nil, fmt.Errorf("%w: duplicate alias %q", ErrKeyStore, e.Alias)
		}
		seen[e.Alias] = true

		pkcs8Key, err := x509.MarshalPKCS8PrivateKey(e.Key)
		if err != nil {
			return nil, fmt.Errorf("marshaling private key to PKCS#8: %w", err)
		}

		chain := make([]keystore.Certificate, 0, len(e.Chain))
		for _, cert := range e.Chain {
			chain = append(chain, keystore.Certificate{
				Type:    "X.509",
				Content: cert.Raw,
			})
		}

		if err := ks.SetPrivateKeyEntry(e.Alias, keystore.PrivateKeyEntry{
			CreationTime:     time.Now(),
			PrivateKey:       pkcs8Key,
			CertificateChain: chain,
		}, password); err != nil {
			return nil, fmt.Errorf("%w: setting entry %q: %v", ErrKeyStore, e.Alias, err)
		}
	}

	var buf bytes.Buffer
	if err := ks.Store(&buf, password); err != nil {
		return nil, fmt.Errorf("%w: storing JKS: %v", ErrKeyStore, err)
	}
	return buf.Bytes(), nil
}

// DecodeJKSKey loads a JKS keystore and returns the private key and
// certificate chain stored under the given alias. Local mode uses this to
// read the developer identity from an existing keystore file.
func DecodeJKSKey(data, password []byte, alias string) (crypto.PrivateKey, []*x509.Certificate, error) {
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), password); err != nil {
		return nil, nil, fmt.Errorf("%w: loading JKS: %v", ErrKeyStore, err)
	}

	if !ks.IsPrivateKeyEntry(alias) {
		return nil, nil, fmt.Errorf("%w: no private key entry under alias %q", ErrKeyStore, alias)
	}
	entry, err := ks.GetPrivateKeyEntry(alias, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading entry %q: %v", ErrKeyStore, alias, err)
	}

	key, err := x509.ParsePKCS8PrivateKey(entry.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}

	chain := make([]*x509.Certificate, 0, len(entry.CertificateChain))
	for _, c := range entry.CertificateChain {
		cert, err := x509.ParseCertificate(c.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: certificate in chain: %v", ErrCertificateFormat, err)
		}
		chain = append(chain, cert)
	}
	return key, chain, nil
}
