package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"markerid/internal/workflow"
)

func newRosterCommand(ctx *commandContext) *cobra.Command {
	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect or reset roster claims",
	}

	rosterCmd.AddCommand(newRosterShowCommand(ctx))
	rosterCmd.AddCommand(newRosterResetCommand(ctx))

	return rosterCmd
}

func newRosterShowCommand(ctx *commandContext) *cobra.Command {
	var claimedOnly bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List roster records with their claim and holder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(_ context.Context, mgr *workflow.Manager) error {
				records := mgr.Records(claimedOnly)
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No records")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						strconv.Itoa(rec.Index),
						rec.Label,
						formatScore(rec.Claim),
						dash(rec.Holder),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Index", "Label", "Claim", "Holder"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&claimedOnly, "claimed", false, "Only show records with a claim")
	return cmd
}

func newRosterResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every claim and return assigned artifacts to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				records, artifacts, err := mgr.ResetClaims(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d claims; %d artifacts returned to pending\n", records, artifacts)
				return nil
			})
		},
	}
}
