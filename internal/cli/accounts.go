package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"genebank/internal/auth"
)

func newGroupCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage ownership groups",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			g, err := a.svc.CreateGroup(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group %s created (%s)\n", g.Name, g.ID)
			return nil
		},
	})
	return cmd
}

func newUserCmd(configPath *string) *cobra.Command {
	var (
		groups []string
		staff  bool
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			u, err := a.svc.CreateUser(ctx, args[0], groups, staff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s created (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	add.Flags().StringArrayVar(&groups, "group", nil, "group membership; repeatable")
	add.Flags().BoolVar(&staff, "staff", false, "mark the user as staff")

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(add)
	return cmd
}

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			if _, err := a.svc.Authenticate(ctx, user); err != nil {
				return fmt.Errorf("user %s: %w", user, err)
			}
			signer, err := auth.NewSigner(a.cfg.Auth.Secret, a.cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = a.cfg.Auth.TokenTTL
			}
			tok, err := signer.Issue(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username the token identifies")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; the configured default when zero")
	cmd.MarkFlagRequired("user")
	return cmd
}
