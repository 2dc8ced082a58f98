package main

import (
	"context"
	"errors"
	"fmt"

	"dayplanner/internal/auth"
	"dayplanner/internal/db"
	"dayplanner/internal/db/models"
	"dayplanner/internal/store"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var email string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user, prompting for the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(svc *auth.Service) error {
				password, err := promptNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				user, err := svc.CreateAccount(cmd.Context(), auth.RegisterInput{
					Username:  args[0],
					Email:     email,
					Password1: password,
					Password2: password,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&email, "email", "e", "", "email address (required)")
	_ = add.MarkFlagRequired("email")

	passwd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set a user's password; their sessions are logged out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(svc *auth.Service) error {
				user, err := lookupUser(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}
				password, err := promptNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if _, err := svc.SetPassword(cmd.Context(), user.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", user.Username)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user and all of their tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd.Context(), func(svc *auth.Service) error {
				user, err := lookupUser(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.DeleteAccount(cmd.Context(), user.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", user.Username)
				return nil
			})
		},
	}

	cmd.AddCommand(add, passwd, del)
	return cmd
}

// withAccounts opens the configured store for the duration of fn.
func withAccounts(ctx context.Context, fn func(*auth.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.OpenAndMigrate(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.Close()

	return fn(auth.NewService(st, auth.NewPasswordHasher()))
}

func lookupUser(ctx context.Context, svc *auth.Service, username string) (*models.User, error) {
	user, err := svc.UserByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
