package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newRouterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "router",
		Short: "Router roles and rule whitelist",
	}

	cmd.AddCommand(newShowCmd("show", "Show the router's roles and whitelist", "/api/v1/router", func() any { return &response.Router{} }))
	cmd.AddCommand(newToggleCmd("rule <address>", "Add a whitelist entry for a game rule (entries are write-once)", "/api/v1/router/rules", func() any { return &response.Router{} }))
	cmd.AddCommand(newToggleCmd("operator <address>", "Grant or revoke the router operator role", "/api/v1/router/operators", func() any { return &response.Router{} }))
	cmd.AddCommand(newSetAddressCmd("transfer-owner <address>", "Hand over router administration", "/api/v1/router/owner", func() any { return &response.Router{} }))

	return cmd
}

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Game rule configuration",
	}

	cmd.AddCommand(newShowCmd("show", "Show the game rule configuration", "/api/v1/rule", func() any { return &response.GameRule{} }))
	cmd.AddCommand(newToggleCmd("operator <address>", "Grant or revoke the game rule operator role", "/api/v1/rule/operators", func() any { return &response.GameRule{} }))
	cmd.AddCommand(newSetAddressCmd("fee-to <address>", "Set the platform fee recipient", "/api/v1/rule/fee-to", func() any { return &response.GameRule{} }))
	cmd.AddCommand(newSetAddressCmd("transfer-owner <address>", "Hand over game rule ownership", "/api/v1/rule/owner", func() any { return &response.GameRule{} }))
	cmd.AddCommand(newRuleFeeCmd())

	return cmd
}

func newRuleFeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fee <percent>",
		Short: "Set the platform fee percentage taken from earnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percent, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}

			var result response.GameRule
			if err := client.Put("/api/v1/rule/fee", request.FeeRequest{Percent: percent}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// newShowCmd fetches path into a fresh value from newResult
func newShowCmd(use, short, path string, newResult func() any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := newResult()
			if err := client.Get(path, result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(deref(result))
			return nil
		},
	}
}

func newToggleCmd(use, short, path string, newResult func() any) *cobra.Command {
	var disable bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			result := newResult()
			if err := client.Post(path, request.ConfigRequest{Address: addr, Enabled: !disable}, result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(deref(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&disable, "disable", false, "Disable instead of enable")

	return cmd
}

func newSetAddressCmd(use, short, path string, newResult func() any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			result := newResult()
			if err := client.Put(path, request.AddressRequest{Address: addr}, result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(deref(result))
			return nil
		},
	}
}

// deref unwraps the pointers newResult hands out so the text printers match
// on value types
func deref(v any) any {
	switch r := v.(type) {
	case *response.Router:
		return *r
	case *response.GameRule:
		return *r
	default:
		return v
	}
}
