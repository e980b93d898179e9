package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietbit/keymint/internal"
)

var ledgerPath string

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List recorded issuances",
	Long:  "Print the issuance ledger: every trial certificate minted with --ledger, newest first.",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().StringVar(&ledgerPath, "ledger", "", "SQLite issuance ledger path")
	_ = ledgerCmd.MarkFlagRequired("ledger")

	registerCompletion(ledgerCmd, completionInput{"ledger", fileCompletion})
}

func runLedger(cmd *cobra.Command, args []string) error {
	internal.SetupLogger(logLevel)

	ledger, err := internal.OpenLedger(ledgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	records, err := ledger.All()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SERIAL\tSUBJECT\tISSUER\tNOT AFTER\tKEYSTORE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.SerialNumber, r.Subject, r.Issuer,
			r.NotAfter.Format(time.RFC3339), r.KeystorePath)
	}
	return w.Flush()
}
