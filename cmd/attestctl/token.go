package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dalemusser/chapterhub/internal/app/system/auth"
)

// secretEnv is read when --secret is not given; it is the key the service
// loads as secret_key.
const secretEnv = "CHAPTERHUB_SECRET_KEY"

func tokenCommand() *cobra.Command {
	var (
		secret string
		user   auth.SessionUser
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for API clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(secretEnv)
			}
			if secret == "" {
				return fmt.Errorf("--secret or %s is required", secretEnv)
			}
			switch user.Role {
			case auth.RoleAdmin:
			case auth.RoleSecretary, auth.RoleMember:
				if user.ChapterID == "" {
					return errors.New("--chapter is required for chapter roles")
				}
			default:
				return fmt.Errorf("unknown role %q", user.Role)
			}
			tok, err := auth.NewTokens(secret).Issue(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "signing key (defaults to $"+secretEnv+")")
	cmd.Flags().StringVar(&user.ID, "subject", "", "user id carried by the token")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar(&user.Role, "role", auth.RoleSecretary, "admin, secretary or member")
	cmd.Flags().StringVar(&user.ChapterID, "chapter", "", "chapter id the token is scoped to")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
