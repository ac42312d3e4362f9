package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	userdomain "github.com/indrajit912/hermes/internal/user/domain"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage relay accounts",
	}
	cmd.AddCommand(usersCreateCmd(), usersApproveCmd(), usersListCmd(), usersDeleteCmd())
	return cmd
}

func usersCreateCmd() *cobra.Command {
	var (
		name    string
		email   string
		admin   bool
		approve bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new account, optionally approving it immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resp, err := rt.users.Register(ctx, userdomain.RegisterRequest{Name: name, Email: email})
			if err != nil {
				return err
			}

			if admin {
				user, err := rt.usersRepo.FindByID(ctx, rt.db, resp.ID)
				if err != nil {
					return err
				}
				user.IsAdmin = true
				if err := rt.usersRepo.Update(ctx, rt.db, user); err != nil {
					return err
				}
			}

			fmt.Printf("User %s created (%s)\n", resp.ID, resp.Email)

			if approve {
				result, err := rt.users.Approve(ctx, resp.ID)
				if err != nil {
					return err
				}
				fmt.Printf("API key: %s\n", result.APIKey)
				fmt.Println("Store this key now; it is not retrievable later.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	cmd.Flags().BoolVar(&approve, "approve", false, "approve immediately and print the API key")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func usersApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <user-id>",
		Short: "Approve a pending account and print its API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rt.users.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if result.AlreadyApproved {
				fmt.Println("User is already approved.")
				return nil
			}
			fmt.Printf("API key: %s\n", result.APIKey)
			if !result.Notified {
				fmt.Println("Warning: the approval email could not be sent.")
			}
			return nil
		},
	}
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := rt.users.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				state := "pending"
				switch {
				case u.IsBlocked:
					state = "blocked"
				case u.APIKeyApproved:
					state = "approved"
				}
				role := ""
				if u.IsAdmin {
					role = " admin"
				}
				fmt.Printf("%s  %-30s %-10s%s\n", u.ID, u.Email, state, role)
			}
			return nil
		},
	}
}

func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account with its bots and call history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.users.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("User deleted.")
			return nil
		},
	}
}
