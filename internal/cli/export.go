package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage/local"
	"github.com/tigerroll/intactdb/pkg/intact/component/export"
	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
)

// directoryStorageRef names the storage connection created for an export directory argument.
const directoryStorageRef = "cli-export-dir"

func newExportCmd(r *runner) *cobra.Command {
	var storageRef string
	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Write the released publications to a parquet file",
		Long: "Write the released publications to a parquet file.\n\n" +
			"Without a directory the file goes to the storage connection named by intact.export.storage_ref " +
			"(or --storage), under intact.export.output_base_dir.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := r.options()
			opts.Configure = func(cfg *config.Config) {
				if storageRef != "" {
					cfg.Intact.Export.StorageRef = storageRef
				}
				if len(args) == 1 {
					cfg.Intact.StorageConfigs[directoryStorageRef] = map[string]interface{}{
						"type":     local.ProviderType,
						"base_dir": args[0],
					}
					cfg.Intact.Export.StorageRef = directoryStorageRef
					cfg.Intact.Export.OutputBaseDir = "."
				}
			}

			var exporter *export.Exporter
			return r.run(cmd, opts, func(ctx context.Context) error {
				result, err := exporter.Export(ctx)
				if err != nil {
					return err
				}
				if result.Rows == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no released publications")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d publication(s) to %s\n", result.Rows, result.ObjectName)
				return nil
			}, &exporter)
		},
	}
	cmd.Flags().StringVar(&storageRef, "storage", "", "storage connection receiving the file")
	return cmd
}
