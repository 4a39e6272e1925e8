package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Directory user commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserDeleteCmd())
	cmd.AddCommand(newUserMirrorCmd())

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		owner  string
		mirror string
		tier   uint8
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a username and its mirror account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateUserRequest{Username: args[0], Tier: tier}
			if owner != "" {
				addr, err := parseAddress(owner)
				if err != nil {
					return err
				}
				req.Owner = addr
			}
			if mirror != "" {
				addr, err := parseAddress(mirror)
				if err != nil {
					return err
				}
				req.Mirror = &addr
			}

			var result response.User
			if err := client.Post("/api/v1/users", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Linked external owner address")
	cmd.Flags().StringVar(&mirror, "mirror", "", "Bind an existing mirror instead of deriving one")
	cmd.Flags().Uint8Var(&tier, "tier", 0, "User tier")

	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Look up a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.User
			if err := client.Get(fmt.Sprintf("/api/v1/users/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove a user; the mirror and its funds remain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/users/%s", url.PathEscape(args[0]))); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Deleted user %s", args[0]))
			return nil
		},
	}
}

func newUserMirrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mirror <username>",
		Short: "Compute the mirror address of a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Mirror
			if err := client.Get(fmt.Sprintf("/api/v1/mirrors/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
