package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cricket-booking/internal/auth"
	"cricket-booking/internal/config"
)

func newTokenCmd() *cobra.Command {
	var id auth.Identity
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id.UserID == "" {
				return errors.New("--user is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).CreateAccessToken(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&id.UserID, "user", "", "User id carried in the sub claim")
	cmd.Flags().StringVar(&id.Email, "email", "", "Optional email claim")
	cmd.Flags().StringVar(&id.Role, "role", "", "Optional role claim")
	return cmd
}
