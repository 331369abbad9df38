package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"outfitly/internal/middleware"
)

// tokenCmd mints a bearer token for local testing. Identity is owned by
// an external provider in production; this only signs with JWT_SECRET.
func tokenCmd(load configLoader) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			id := uuid.New()
			if user != "" {
				if id, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("--user: %w", err)
				}
			}
			tok, err := middleware.IssueToken([]byte(cfg.JWTSecret), id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user:  %s\ntoken: %s\n", id, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User id (random if empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
