package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/request"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Game room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomCountCmd())
	cmd.AddCommand(newRoomAddressCmd())
	cmd.AddCommand(newRoomMembershipCmd("join", "Seat players in a room"))
	cmd.AddCommand(newRoomMembershipCmd("leave", "Remove players from a room"))
	cmd.AddCommand(newRoomSettleCmd("pay", "Move a stake from a player's mirror into the room"))
	cmd.AddCommand(newRoomSettleCmd("earn", "Pay winnings from the room to a player, less the platform fee"))
	cmd.AddCommand(newRoomEndCmd())
	cmd.AddCommand(newRoomCloseCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "create <game-id>",
		Short: "Open the next room of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateRoomRequest{
				GameID:          args[0],
				DurationSeconds: uint64(duration / time.Second),
			}

			var result response.Room
			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "Time until the room may be force-closed")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id> <room>",
		Short: "Show a room and its balances",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}

			var result response.Room
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <game-id>",
		Short: "Show how many rooms a game has had",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomCount
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <game-id> <room>",
		Short: "Compute a room's address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}

			var result response.RoomAddress
			if err := client.Get(path+"/address", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomMembershipCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <game-id> <room> <username>...",
		Short: short,
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}

			var result response.Room
			if err := client.Post(path+"/"+action, request.UsernamesRequest{Usernames: args[2:]}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomSettleCmd(action, short string) *cobra.Command {
	var asset string

	cmd := &cobra.Command{
		Use:   action + " <game-id> <room> <username> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			assetAddr, err := parseAsset(asset)
			if err != nil {
				return err
			}

			req := request.SettleRequest{Username: args[2], Asset: assetAddr, Amount: amount}
			var result response.Room
			if err := client.Post(path+"/"+action, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&asset, "asset", "native", "Asset address, or native")

	return cmd
}

func newRoomEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <game-id> <room>",
		Short: "End a drained room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}

			var result response.Room
			if err := client.Post(path+"/end", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomCloseCmd() *cobra.Command {
	var recipient string

	cmd := &cobra.Command{
		Use:   "close <game-id> <room>",
		Short: "Force-close a room past its deadline, sweeping its funds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := roomPath(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := parseAddress(recipient)
			if err != nil {
				return err
			}

			var result response.Room
			if err := client.Post(path+"/close", request.CloseRequest{Recipient: to}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipient, "recipient", "", "Address receiving the swept funds")
	_ = cmd.MarkFlagRequired("recipient")

	return cmd
}
