package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/logger"
	"pressroom/internal/persistence"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage database schema migrations.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

Applied migrations are tracked in the schema_migrations table and new
migrations are applied in version order.

Examples:
  pressroom migrate up
  pressroom migrate status`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateStatusCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Long: `Apply all pending database migrations.

Each migration runs in a transaction and is rolled back on failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runMigrateUp(ctx context.Context, out io.Writer) error {
	logger.Info("Starting database migration")

	db, err := openDatabase(ctx, config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := persistence.NewMigrationManager(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, aiStyle.Render("All migrations applied successfully"))
	return nil
}

func runMigrateStatus(ctx context.Context, out io.Writer) error {
	db, err := openDatabase(ctx, config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := persistence.NewMigrationManager(db).Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	printMigrationStatus(out, status)
	return nil
}

func printMigrationStatus(out io.Writer, status []persistence.MigrationStatus) {
	if len(status) == 0 {
		fmt.Fprintln(out, "No migrations found")
		return
	}

	fmt.Fprintln(out, headingStyle.Render("Migration Status"))
	fmt.Fprintf(out, "%-10s %-10s %s\n", "Version", "Status", "Description")

	pending := 0
	for _, m := range status {
		state := aiStyle.Render(fmt.Sprintf("%-10s", "applied"))
		if !m.Applied {
			state = deterministicStyle.Render(fmt.Sprintf("%-10s", "pending"))
			pending++
		}
		fmt.Fprintf(out, "%-10d %s %s\n", m.Version, state, m.Description)
	}

	fmt.Fprintf(out, "\nApplied: %d | Pending: %d | Total: %d\n", len(status)-pending, pending, len(status))
	if pending > 0 {
		fmt.Fprintln(out, "Run 'pressroom migrate up' to apply pending migrations")
	}
}
