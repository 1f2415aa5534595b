package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigerroll/intactdb/pkg/intact/component/importer"
)

func newImportCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dataset.yaml>",
		Short: "Synchronize a YAML dataset of publications and complexes in one pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var im *importer.Importer
			return r.run(cmd, r.options(), func(ctx context.Context) error {
				summary, err := im.ImportFile(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, ac := range summary.Publications {
					fmt.Fprintf(out, "publication %s\n", ac)
				}
				for _, ac := range summary.Complexes {
					fmt.Fprintf(out, "complex %s\n", ac)
				}
				return nil
			}, &im)
		},
	}
}
