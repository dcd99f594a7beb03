package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"markerid/internal/queue"
	"markerid/internal/workflow"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Work through artifacts that need a decision",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewShowCommand(ctx))
	reviewCmd.AddCommand(newReviewConfirmCommand(ctx))
	reviewCmd.AddCommand(newReviewSkipCommand(ctx))
	reviewCmd.AddCommand(newReviewErrorCommand(ctx))
	reviewCmd.AddCommand(newReviewEditCommand(ctx))
	reviewCmd.AddCommand(newReviewRetryCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the review queue from front to back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				queued, err := mgr.ReviewQueue(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(queued) == 0 {
					fmt.Fprintln(out, "Review queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(queued))
				for i, artifact := range queued {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						artifact.ID,
						artifact.Reason,
						dash(formatFields(artifact.Fields)),
						dash(artifact.Source),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Artifact", "Reason", "Fields", "Source"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newReviewShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show an artifact with its trail and best candidates",
		Long:  "Show an artifact with its trail and best candidates. Without an id, shows the front of the review queue.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				var (
					detail *workflow.Detail
					err    error
				)
				if len(args) == 0 {
					detail, err = mgr.ShowNext(runCtx)
					if errors.Is(err, queue.ErrNotFound) {
						fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
						return nil
					}
				} else {
					detail, err = mgr.Show(runCtx, args[0])
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				a := detail.Artifact
				fmt.Fprintf(out, "Artifact: %s\n", a.ID)
				fmt.Fprintf(out, "Status:   %s\n", paint(string(a.Status), statusColor(a.Status), colorize))
				if a.Source != "" {
					fmt.Fprintf(out, "Source:   %s\n", a.Source)
				}
				if a.Reason != "" {
					fmt.Fprintf(out, "Reason:   %s\n", a.Reason)
				}
				if a.Assigned() {
					fmt.Fprintf(out, "Record:   %d (%s, score %s)\n", a.RecordIndex, a.Label, formatScore(a.Score))
				}
				if a.Note != "" {
					fmt.Fprintf(out, "Note:     %s\n", a.Note)
				}
				fmt.Fprintf(out, "Tokens:   %s\n", dash(strings.Join(a.Tokens, " | ")))
				fmt.Fprintf(out, "Fields:   %s\n", dash(formatFields(a.Fields)))

				if len(detail.Events) > 0 {
					fmt.Fprintln(out, "\nEvents:")
					for _, event := range detail.Events {
						fmt.Fprintf(out, "  %s  %s\n", event.At.Local().Format("2006-01-02 15:04:05"), event.Message)
					}
				}

				if len(detail.Candidates) == 0 {
					fmt.Fprintln(out, "\nNo comparable roster records")
					return nil
				}
				rows := make([][]string, 0, len(detail.Candidates))
				for _, c := range detail.Candidates {
					rows = append(rows, []string{
						strconv.Itoa(c.Index),
						c.Label,
						formatScore(c.Score),
						formatScore(c.Raw),
						formatScore(c.Claim),
						dash(c.Holder),
						strconv.Itoa(c.Distance),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Index", "Label", "Score", "Raw", "Claim", "Holder", "Distance"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newReviewConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id> <record-index>",
		Short: "Assign an artifact to a roster record at full confidence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid record index %q", args[1])
			}
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				res, err := mgr.Confirm(runCtx, args[0], index)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printResult(out, res, shouldColorize(out))
				return nil
			})
		},
	}
}

func newReviewSkipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <id>",
		Short: "Move an artifact to the back of the review queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				if err := mgr.Skip(runCtx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s moved to the back of the review queue\n", args[0])
				return nil
			})
		},
	}
}

func newReviewErrorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "error <id> [note...]",
		Short: "Mark an artifact as unusable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note := strings.Join(args[1:], " ")
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				if err := mgr.MarkError(runCtx, args[0], note); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s marked as error\n", args[0])
				return nil
			})
		},
	}
}

func newReviewEditCommand(ctx *commandContext) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "edit <id> --set slot=value...",
		Short: "Override fields of an artifact and search again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := workflow.ParseOverrides(pairs)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				res, err := mgr.Edit(runCtx, args[0], overrides)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printResult(out, res, shouldColorize(out))
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "set", nil, "Field override as slot=value (repeatable)")
	return cmd
}

func newReviewRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Search again for the artifact at the front of the review queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				_, res, err := mgr.Retry(runCtx)
				if errors.Is(err, queue.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
					return nil
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printResult(out, res, shouldColorize(out))
				return nil
			})
		},
	}
}
