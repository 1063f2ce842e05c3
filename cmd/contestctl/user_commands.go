package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}
	userCmd.AddCommand(newUserCreateCommand(ctx))
	return userCmd
}

func newUserCreateCommand(ctx *commandContext) *cobra.Command {
	var input service.CreateUserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			user, err := service.NewUserService(conn, store.NewUserStore(conn), store.NewAuditStore(conn)).CreateUser(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []string{"ID", "Name", "Email", "Role"},
				[][]string{{user.ID.String(), user.Name, user.Email, string(user.Role)}}, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&input.Role, "role", string(users.RoleJudge), "admin, judge or participant")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
