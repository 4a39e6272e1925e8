package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newEventsCmd() *cobra.Command {
	var (
		limit     int
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent committed events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			if eventType != "" {
				q.Set("type", eventType)
			}

			var result []response.Event
			if err := client.Get("/api/v1/events?"+q.Encode(), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events")
	cmd.Flags().StringVar(&eventType, "type", "", "Only events of this type (e.g. earned)")

	return cmd
}

func newDeploymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deployment",
		Short: "Show the bootstrapped component addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Deployment
			if err := client.Get("/api/v1/deployment", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
