package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kevin07696/intesa-checkout/internal/adapters/intesa"
	"github.com/kevin07696/intesa-checkout/internal/domain"
)

func verifyCmd() *cobra.Command {
	var (
		orderID string
		cancel  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Classify a captured callback body read from stdin",
		Long: `Classify a captured url-encoded callback body read from stdin and print the report.

Examples:
  intesactl verify --merchant-id 13IN001 --order-id 1001 < callback.form
  intesactl verify --cancel < cancel.form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read callback: %w", err)
			}
			form, err := url.ParseQuery(strings.TrimSpace(string(raw)))
			if err != nil {
				return fmt.Errorf("parse callback: %w", err)
			}
			inbound := domain.InboundFieldsFromForm(form)
			out := cmd.OutOrStdout()

			if cancel {
				decline := intesa.ClassifyDecline(inbound)
				fmt.Fprintf(out, "tier: %s\nreturn_code: %s\n", decline.Tier, decline.ReturnCode)
				printReport(out, intesa.ExtractReport(inbound))
				return nil
			}

			cfg, err := gatewayConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			// Only the ID takes part in classification
			order := domain.OrderRef{ID: orderID, Total: decimal.Zero}

			outcome := intesa.Classify(cfg, order, inbound)
			fmt.Fprintf(out, "status: %s\n", outcome.Status)
			if !outcome.Accepted() {
				fmt.Fprintf(out, "reason: %s\n", outcome.Reason)
			}
			fmt.Fprintf(out, "return_code: %s\n", outcome.ReturnCode)
			fmt.Fprintf(out, "signature_valid: %t\n", intesa.VerifyHash(cfg, inbound))
			printReport(out, intesa.ExtractReport(inbound))

			return domain.RejectionError(outcome)
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "expected order ID")
	cmd.Flags().BoolVar(&cancel, "cancel", false, "treat the body as a cancel callback")

	return cmd
}

func printReport(out io.Writer, report domain.PaymentReport) {
	for _, row := range report {
		fmt.Fprintf(out, "%-36s %s\n", row.Label+":", row.Value)
	}
}
