package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var driverFlag string
	var databaseFlag string

	ctx := newCommandContext(&driverFlag, &databaseFlag)

	rootCmd := &cobra.Command{
		Use:           "contestctl",
		Short:         "KOE contest maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Database driver (sqlite3 or pgx), overrides DATABASE_DRIVER")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "database", "", "Database DSN, overrides DATABASE_URL")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newUserCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newRegistrationsCommand(ctx))

	return rootCmd
}
