package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newAssetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Ledger asset commands",
	}

	cmd.AddCommand(newAssetListCmd())
	cmd.AddCommand(newAssetRegisterCmd())
	cmd.AddCommand(newAssetMoveCmd("mint", "Mint an asset (minter only)"))
	cmd.AddCommand(newAssetMoveCmd("transfer", "Transfer an asset from the caller"))
	cmd.AddCommand(newAssetBalancesCmd())

	return cmd
}

func newAssetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Asset
			if err := client.Get("/api/v1/assets", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAssetRegisterCmd() *cobra.Command {
	var decimals uint8

	cmd := &cobra.Command{
		Use:   "register <symbol>",
		Short: "Register a token minted by the caller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Asset
			if err := client.Post("/api/v1/assets", request.RegisterAssetRequest{Symbol: args[0], Decimals: decimals}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Uint8Var(&decimals, "decimals", 18, "Display precision")

	return cmd
}

func newAssetMoveCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <asset|native> <to> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := parseAsset(args[0])
			if err != nil {
				return err
			}
			to, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			var result response.Balance
			path := fmt.Sprintf("/api/v1/assets/%s/%s", asset, action)
			if err := client.Post(path, request.AmountRequest{To: to, Amount: amount}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAssetBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <account>",
		Short: "Show an account's balance of every asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			var result []response.Balance
			if err := client.Get(fmt.Sprintf("/api/v1/balances/%s", account), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
