package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "keymint",
	Short: "Trial code-signing keystore minter",
	Long: "Mint a short-lived code-signing keystore: sign a fresh trial key pair with a " +
		"developer identity and write the keystore plus the developer certificate PEM.",
}

// normalizeFlags lets users write underscored flag names (valid_days) the
// way the equivalent environment variables are spelled.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(ledgerCmd)
}
