package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/api/apierr"
	"github.com/mcoot/plyr-settlement/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and show the deployment it serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := HealthResult{Server: cfg.ServerURL}
			if err := client.Get("/api/v1/health", &result.Health); err != nil {
				return err
			}

			if result.Bootstrapped {
				var d response.Deployment
				err := client.Get("/api/v1/deployment", &d)
				switch {
				case err == nil:
					result.Deployment = &d
				case IsCode(err, apierr.CodeNotBootstrapped):
					result.Bootstrapped = false
				default:
					return err
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
