package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/lifecycle"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
)

// inPass runs fn with the lifecycle manager inside one reconciliation pass.
func (r *runner) inPass(cmd *cobra.Command, fn func(ctx context.Context, m *lifecycle.Manager, p *reconcile.Pass) error) error {
	var (
		m  *lifecycle.Manager
		tm tx.TransactionManager
	)
	return r.run(cmd, r.options(), func(ctx context.Context) error {
		return reconcile.Run(ctx, tm, func(ctx context.Context, p *reconcile.Pass) error {
			return fn(ctx, m, p)
		})
	}, &m, &tm)
}

func transitionNames() string {
	names := make([]string, 0, len(model.Transitions()))
	for _, t := range model.Transitions() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func newLifecycleCmd(r *runner) *cobra.Command {
	var req model.TransitionRequest
	cmd := &cobra.Command{
		Use:   "lifecycle <transition> <ac>",
		Short: "Apply a curation transition to a publication or complex",
		Long:  "Apply a curation transition to a publication or complex.\n\nTransitions: " + transitionNames() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseTransition(args[0])
			if err != nil {
				return err
			}
			req.Transition = t
			ac := args[1]
			return r.inPass(cmd, func(ctx context.Context, m *lifecycle.Manager, p *reconcile.Pass) error {
				event, err := m.Apply(ctx, p, ac, req)
				if err != nil {
					return err
				}
				status, err := m.Status(ctx, p, ac)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (event %s)\n", ac, event.Type, status, event.AC)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Actor, "actor", "", "user recorded on the lifecycle event")
	cmd.Flags().StringVar(&req.Note, "note", "", "note recorded on the lifecycle event")
	cmd.Flags().StringVar(&req.Curator, "curator", "", "new owner, for assign")
	cmd.Flags().StringVar(&req.Reviewer, "reviewer", "", "reviewer, for ready-for-checking")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newStatusCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "status <ac>",
		Short: "Print the curation status of a publication or complex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.inPass(cmd, func(ctx context.Context, m *lifecycle.Manager, p *reconcile.Pass) error {
				status, err := m.Status(ctx, p, args[0])
				if err != nil {
					return err
				}
				if status == model.StatusNone {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: (none)\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], status)
				return nil
			})
		},
	}
}

func newHistoryCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "history <ac>",
		Short: "Print the lifecycle events of a publication or complex, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.inPass(cmd, func(ctx context.Context, m *lifecycle.Manager, p *reconcile.Pass) error {
				events, err := m.History(ctx, p, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range events {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", e.OccurredAt.Format(time.RFC3339), e.Type, e.Actor, e.Note)
				}
				return nil
			})
		},
	}
}

func newReleaseReadyCmd(r *runner) *cobra.Command {
	var actor, note string
	cmd := &cobra.Command{
		Use:   "release-ready",
		Short: "Release every publication that is ready for release",
		Long: "Release every publication that is ready for release.\n\n" +
			"A publication whose release fails is rolled back alone. The others are committed " +
			"and the command exits with an error listing the failures.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report *lifecycle.ReleaseReport
			err := r.inPass(cmd, func(ctx context.Context, m *lifecycle.Manager, p *reconcile.Pass) error {
				var err error
				report, err = m.ReleaseReady(ctx, p, actor, note)
				return err
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ac := range report.Released {
				fmt.Fprintf(out, "released %s\n", ac)
			}
			fmt.Fprintf(out, "%d publication(s) released\n", len(report.Released))
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d publication(s) could not be released: %w", len(report.Failed), report.Err())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "user recorded on the release events")
	cmd.Flags().StringVar(&note, "note", "", "note recorded on the release events")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
