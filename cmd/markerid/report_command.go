package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"markerid/internal/config"
	"markerid/internal/fileutil"
	"markerid/internal/workflow"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a YAML summary of assignments and the review backlog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, mgr *workflow.Manager) error {
				report, err := mgr.BuildReport(runCtx)
				if err != nil {
					return err
				}
				target := strings.TrimSpace(outputPath)
				if target == "" {
					return workflow.WriteReport(cmd.OutOrStdout(), report)
				}

				var buf bytes.Buffer
				if err := workflow.WriteReport(&buf, report); err != nil {
					return err
				}
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := fileutil.WriteFileAtomic(expanded, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote report to %s\n", expanded)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	return cmd
}
