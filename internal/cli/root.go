// Package cli implements the intactdb command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tigerroll/intactdb/internal/app"
	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
)

// Version is set at build time.
var Version = "dev"

const envPrefix = "INTACTDB"

// runner carries the settings shared by every subcommand.
type runner struct {
	v              *viper.Viper
	embeddedConfig config.EmbeddedConfig
}

// NewRootCommand builds a fresh command tree. Each call has its own viper instance, so flags
// never leak between executions.
func NewRootCommand(embeddedConfig config.EmbeddedConfig) *cobra.Command {
	r := &runner{v: viper.New(), embeddedConfig: embeddedConfig}

	root := &cobra.Command{
		Use:           "intactdb",
		Short:         "intactdb manages a curated molecular interaction store.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "YAML file layered over the embedded configuration")
	flags.String("env-file", ".env", ".env file loaded before environment overrides")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while the command runs (e.g. :9090)")
	flags.StringSlice("db-adaptors", nil, "database providers to register (postgres,mysql,sqlite); all when empty")
	flags.Bool("stats", true, "print reconciliation statistics after the command")

	r.v.SetEnvPrefix(envPrefix)
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	r.v.AutomaticEnv()
	cobra.CheckErr(r.v.BindPFlags(flags))

	root.AddCommand(
		newMigrateCmd(r),
		newImportCmd(r),
		newLifecycleCmd(r),
		newStatusCmd(r),
		newHistoryCmd(r),
		newReleaseReadyCmd(r),
		newExportCmd(r),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, embeddedConfig config.EmbeddedConfig, args []string) error {
	root := NewRootCommand(embeddedConfig)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// options resolves the application options from flags and INTACTDB_* variables.
func (r *runner) options() app.Options {
	return app.Options{
		EmbeddedConfig: r.embeddedConfig,
		EnvFilePath:    r.v.GetString("env-file"),
		ConfigFilePath: r.v.GetString("config"),
		MetricsAddr:    r.v.GetString("metrics-addr"),
		DBAdaptors:     splitList(r.v.GetStringSlice("db-adaptors")),
	}
}

// splitList also splits comma-separated entries, as INTACTDB_DB_ADAPTORS arrives as one string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// run executes task inside the application and prints the statistics afterwards, once the
// recorders are drained.
func (r *runner) run(cmd *cobra.Command, opts app.Options, task app.Task, targets ...interface{}) error {
	var stats *metrics.Statistics
	targets = append(targets, &stats)
	err := app.Run(cmd.Context(), opts, task, targets...)
	if stats != nil && r.v.GetBool("stats") {
		printStatistics(cmd.OutOrStdout(), stats.Snapshot())
	}
	return err
}

func printStatistics(w io.Writer, snap metrics.Snapshot) {
	out := snap.String()
	if out == "" {
		return
	}
	fmt.Fprintln(w, "--- statistics ---")
	fmt.Fprint(w, out)
}
