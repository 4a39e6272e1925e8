package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Upgrade slot commands",
	}

	cmd.AddCommand(newProxyShowCmd())
	cmd.AddCommand(newProxyUpgradeCmd())
	cmd.AddCommand(newProxyAdminCmd())

	return cmd
}

func newProxyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Show the logic behind a component address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			var result response.Slot
			if err := client.Get(fmt.Sprintf("/api/v1/proxies/%s", addr), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProxyUpgradeCmd() *cobra.Command {
	var initData string

	cmd := &cobra.Command{
		Use:   "upgrade <address> <logic>",
		Short: "Swap the logic behind a component, keeping its state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			req := request.UpgradeRequest{Logic: args[1]}
			if initData != "" {
				if !json.Valid([]byte(initData)) {
					return fmt.Errorf("--init must be valid JSON")
				}
				req.InitData = json.RawMessage(initData)
			}

			var result response.Slot
			if err := client.Post(fmt.Sprintf("/api/v1/proxies/%s/upgrade", addr), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&initData, "init", "", "JSON initializer to run after the swap")

	return cmd
}

func newProxyAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-admin <address> <new-admin>",
		Short: "Hand over a slot's upgrade rights",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			admin, err := parseAddress(args[1])
			if err != nil {
				return err
			}

			var result response.Slot
			if err := client.Put(fmt.Sprintf("/api/v1/proxies/%s/admin", addr), request.AddressRequest{Address: admin}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
