package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

var Version = "dev"

// Exit codes
const (
	exitFailure  = 1
	exitRejected = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates a callback that verify rejected from a tool failure
func exitCode(err error) int {
	if domain.IsCallbackError(err) {
		return exitRejected
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intesactl",
		Short:         "Operator tools for the Banca Intesa checkout",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("merchant-id", os.Getenv("INTESA_MERCHANT_ID"), "merchant client ID")
	rootCmd.PersistentFlags().String("store-key", os.Getenv("INTESA_STORE_KEY"), "store key (defaults to INTESA_STORE_KEY)")

	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(verifyCmd())
	return rootCmd
}
