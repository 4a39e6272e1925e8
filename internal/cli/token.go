package cli

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/plyr-settlement/internal/dependencies/clock"
	"github.com/mcoot/plyr-settlement/internal/dependencies/random"
	"github.com/mcoot/plyr-settlement/internal/model"
	"github.com/mcoot/plyr-settlement/internal/services/auth"
)

// TokenResult describes a locally issued token
type TokenResult struct {
	Token     string        `json:"token"`
	Caller    model.Address `json:"caller"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token commands",
	}

	cmd.AddCommand(newTokenIssueCmd())

	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		address string
		noSave  bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for an address with the server's shared secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JWTSecret == "" {
				return errors.New("a signing secret is required (--secret or SETTLE_JWT_SECRET)")
			}
			caller, err := parseAddress(address)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			svc := auth.New(auth.Config{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}, clock.New(), random.New(), logger)
			tok, err := svc.Issue(caller)
			if err != nil {
				return err
			}

			if !noSave {
				if err := cfg.SaveToken(tok.Token); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(TokenResult{Token: tok.Token, Caller: tok.Caller, ExpiresAt: tok.ExpiresAt})
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Caller address the token names")
	cmd.Flags().StringVar(&cfg.JWTSecret, "secret", cfg.JWTSecret, "Signing secret (env: SETTLE_JWT_SECRET)")
	cmd.Flags().DurationVar(&cfg.TokenTTL, "ttl", cfg.TokenTTL, "Token lifetime")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print the token without writing the token file")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}
