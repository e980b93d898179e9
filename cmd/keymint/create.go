package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/quietbit/keymint"
	"github.com/quietbit/keymint/internal"
)

var (
	createMode        string
	createAlias       string
	createDays        int
	createSubject     string
	createFormat      string
	createCertOut     string
	createKeystoreOut string
	createChainOut    string
	createLedgerPath  string
	createDevKeystore string
	createDevAlias    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a trial signing keystore",
	Long: `Mint a trial signing keystore from a developer identity.

In env mode (CI) the identity comes from base64-encoded DEV_PRIVATE_KEY and
DEV_CERT environment variables. In keystore mode (local) it is read from an
existing developer JKS file. The keystore password always comes from
TRIAL_KEYSTORE_PASSWORD, or an interactive prompt on a terminal.`,
	Example: `  keymint create --days 30 --alias trial
  keymint create --mode keystore --dev-keystore ~/.keys/developer.jks --dev-alias developer
  keymint create --format pkcs12 --keystore-out build/trial-signing.p12`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createMode, "mode", "m", "env", "Credential source: env or keystore")
	createCmd.Flags().StringVarP(&createAlias, "alias", "a", "", "Keystore entry alias (default: TRIAL_KEY_ALIAS)")
	createCmd.Flags().IntVarP(&createDays, "days", "d", 0, "Trial certificate validity in days (default: TRIAL_KEYSTORE_VALID_DAYS)")
	createCmd.Flags().StringVar(&createSubject, "subject", "", "Trial certificate common name")
	createCmd.Flags().StringVarP(&createFormat, "format", "f", "", "Keystore format: jks or pkcs12")
	createCmd.Flags().StringVar(&createCertOut, "cert-out", "", "Developer certificate PEM destination")
	createCmd.Flags().StringVar(&createKeystoreOut, "keystore-out", "", "Trial keystore destination")
	createCmd.Flags().StringVar(&createChainOut, "chain-out", "", "Optional PKCS#7 bundle of the trial chain")
	createCmd.Flags().StringVar(&createLedgerPath, "ledger", "", "SQLite issuance ledger path")
	createCmd.Flags().StringVar(&createDevKeystore, "dev-keystore", "", "Developer keystore file (keystore mode)")
	createCmd.Flags().StringVar(&createDevAlias, "dev-alias", "", "Developer key alias (keystore mode)")

	registerCompletion(createCmd, completionInput{"mode", fixedCompletion("env", "keystore")})
	registerCompletion(createCmd, completionInput{"format", fixedCompletion("jks", "pkcs12")})
	registerCompletion(createCmd, completionInput{"dev-keystore", fileCompletion})
}

// readPassword returns the keystore password from TRIAL_KEYSTORE_PASSWORD,
// falling back to an interactive prompt when stdin is a terminal. In
// non-interactive runs (CI) an unset variable is a hard failure.
func readPassword() ([]byte, error) {
	if pw := os.Getenv(internal.EnvPassword); pw != "" {
		return []byte(pw), nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("%w: %s not set and stdin is not a terminal", keymint.ErrMissingCredential, internal.EnvPassword)
	}

	fmt.Fprint(os.Stderr, "Keystore password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return nil, fmt.Errorf("%w: empty keystore password", keymint.ErrMissingCredential)
	}
	return []byte(pw), nil
}

// credentialSource builds the developer identity source for the selected mode.
func credentialSource(cfg internal.Config, password []byte) (internal.CredentialSource, error) {
	switch createMode {
	case "env":
		return internal.EnvSource{}, nil
	case "keystore":
		path := createDevKeystore
		alias := createDevAlias
		if cfg.DeveloperKeystore != nil {
			if path == "" {
				path = cfg.DeveloperKeystore.Path
			}
			if alias == "" {
				alias = cfg.DeveloperKeystore.Alias
			}
		}
		return internal.KeystoreSource{Path: path, Password: password, Alias: alias}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", keymint.ErrConfiguration, createMode)
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	internal.SetupLogger(logLevel)

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	// Flags win over environment and config file.
	if createAlias != "" {
		cfg.Alias = createAlias
	}
	if createDays != 0 {
		cfg.ValidDays = createDays
	}
	if createSubject != "" {
		cfg.Subject = createSubject
	}
	if createFormat != "" {
		cfg.Format = createFormat
	}
	if createCertOut != "" {
		cfg.CertificateOut = createCertOut
	}
	if createKeystoreOut != "" {
		cfg.KeystoreOut = createKeystoreOut
	}
	if createLedgerPath != "" {
		cfg.LedgerPath = createLedgerPath
	}

	format, err := keymint.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	source, err := credentialSource(cfg, password)
	if err != nil {
		return err
	}
	keyDER, certDER, err := source.Credentials()
	if err != nil {
		return err
	}

	res, err := keymint.Mint(keymint.Request{
		PrivateKey:     keyDER,
		Certificate:    certDER,
		Password:       password,
		Alias:          cfg.Alias,
		Subject:        cfg.Subject,
		ValidityDays:   cfg.ValidDays,
		Format:         format,
		CertificateOut: cfg.CertificateOut,
		KeystoreOut:    cfg.KeystoreOut,
	})
	if err != nil {
		return err
	}

	slog.Info("developer certificate written", "path", res.CertificatePath)
	slog.Info("keystore created",
		"path", res.KeystorePath,
		"format", res.Format,
		"alias", cfg.Alias,
		"serial", res.SerialNumber,
		"not_after", res.NotAfter)

	if createChainOut != "" {
		if err := keymint.WriteChainPKCS7(res.Chain, createChainOut); err != nil {
			return err
		}
		slog.Info("chain bundle written", "path", createChainOut)
	}

	if cfg.LedgerPath != "" {
		ledger, err := internal.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if err := ledger.Record(res); err != nil {
			return err
		}
		slog.Debug("issuance recorded", "ledger", cfg.LedgerPath, "serial", res.SerialNumber)
	}

	return nil
}
