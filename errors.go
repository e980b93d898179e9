package keymint

import "errors"

// Sentinel errors classifying every failure the minting workflow can
// produce. Callers match with errors.Is; filesystem failures are not
// translated and surface as the underlying *fs.PathError.
var (
	// ErrMissingCredential reports that one or more required inputs were
	// never supplied. The wrapped message names every missing field.
	ErrMissingCredential = errors.New("missing credential")

	// ErrKeyFormat reports private key bytes that are not a usable RSA key.
	ErrKeyFormat = errors.New("invalid private key format")

	// ErrCertificateFormat reports certificate bytes that do not parse as X.509.
	ErrCertificateFormat = errors.New("invalid certificate format")

	// ErrConfiguration reports an invalid non-secret setting, such as a
	// non-positive validity period or an empty key alias.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrCryptoProvider reports a failure in key generation or signing.
	ErrCryptoProvider = errors.New("crypto provider failure")

	// ErrKeyStore reports a container-level keystore failure, such as a
	// duplicate alias.
	ErrKeyStore = errors.New("keystore failure")
)
