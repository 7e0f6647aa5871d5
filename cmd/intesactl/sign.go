package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevin07696/intesa-checkout/internal/adapters/intesa"
	"github.com/kevin07696/intesa-checkout/internal/domain"
)

func signCmd() *cobra.Command {
	var (
		orderID string
		amount  string
		okURL   string
		failURL string
		shopURL string
		rnd     string
		live    bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signed redirect form fields for an order",
		Long: `Print the signed redirect form fields for an order, one name=value per line.

Examples:
  intesactl sign --merchant-id 13IN001 --order-id 1001 --amount 10.00 \
    --ok-url https://shop.example/ok --fail-url https://shop.example/fail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gatewayConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			cfg.ShopURL = shopURL
			if live {
				cfg.Mode = domain.ModeLive
			}

			total, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			order := domain.OrderRef{
				ID:        orderID,
				Total:     total,
				Currency:  domain.CurrencyRSD,
				ReturnURL: okURL,
				CancelURL: failURL,
			}
			if err := order.Validate(); err != nil {
				return err
			}

			var opts []intesa.Option
			if rnd != "" {
				opts = append(opts, intesa.WithNonceSource(func() string { return rnd }))
			}
			gw, err := intesa.NewGateway(cfg, zap.NewNop(), opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# POST %s\n", gw.RedirectURL())
			for _, f := range gw.BuildOutbound(order) {
				fmt.Fprintf(out, "%s=%s\n", f.Name, f.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "order ID (oid)")
	cmd.Flags().StringVar(&amount, "amount", "", "order total, e.g. 10.00")
	cmd.Flags().StringVar(&okURL, "ok-url", "", "success callback URL")
	cmd.Flags().StringVar(&failURL, "fail-url", "", "cancel callback URL")
	cmd.Flags().StringVar(&shopURL, "shop-url", "", "shop URL sent as shopurl")
	cmd.Flags().StringVar(&rnd, "rnd", "", "fixed nonce, random when empty")
	cmd.Flags().BoolVar(&live, "live", false, "use the live endpoint")
	_ = cmd.MarkFlagRequired("order-id")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func gatewayConfigFromFlags(cmd *cobra.Command) (domain.GatewayConfig, error) {
	merchantID, _ := cmd.Flags().GetString("merchant-id")
	storeKey, _ := cmd.Flags().GetString("store-key")

	cfg := domain.GatewayConfig{
		MerchantID:      merchantID,
		StoreKey:        storeKey,
		Mode:            domain.ModeTest,
		LiveRedirectURL: domain.DefaultLiveRedirectURL,
		TestRedirectURL: domain.DefaultTestRedirectURL,
	}
	if err := cfg.Validate(); err != nil {
		return domain.GatewayConfig{}, err
	}
	return cfg, nil
}
