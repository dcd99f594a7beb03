package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"markerid/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "process <tokens.jsonl>",
		Short: "Classify and match every artifact in a token file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				summary, err := mgr.ProcessFile(runCtx, args[0], workflow.ProcessOptions{Resume: resume})
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"read", strconv.Itoa(summary.Read)},
					{"assigned", strconv.Itoa(summary.Assigned)},
					{"review", strconv.Itoa(summary.Review)},
					{"unmatched", strconv.Itoa(summary.Unmatched)},
					{"skipped", strconv.Itoa(summary.Skipped)},
					{"invalid", strconv.Itoa(summary.Invalid)},
					{"cascades", strconv.Itoa(summary.Cascades)},
				}
				fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip records up to the last artifact in the global log")
	return cmd
}
