package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigerroll/intactdb/pkg/intact/component/migration"
)

func newMigrateCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the curation schema of the store database",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.migrate(cmd, func(ctx context.Context, m *migration.Migrator) error {
					if err := m.Up(ctx); err != nil {
						return err
					}
					return printVersion(ctx, cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every applied migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.migrate(cmd, func(ctx context.Context, m *migration.Migrator) error {
					if err := m.Down(ctx); err != nil {
						return err
					}
					return printVersion(ctx, cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.migrate(cmd, func(ctx context.Context, m *migration.Migrator) error {
					return printVersion(ctx, cmd, m)
				})
			},
		},
	)
	return cmd
}

func (r *runner) migrate(cmd *cobra.Command, fn func(ctx context.Context, m *migration.Migrator) error) error {
	var m *migration.Migrator
	return r.run(cmd, r.options(), func(ctx context.Context) error {
		return fn(ctx, m)
	}, &m)
}

func printVersion(ctx context.Context, cmd *cobra.Command, m *migration.Migrator) error {
	version, dirty, ok, err := m.Version(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "schema version: none")
		return nil
	}
	fmt.Fprintf(out, "schema version: %d (dirty: %t)\n", version, dirty)
	return nil
}
