package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"markerid/internal/dates"
	"markerid/internal/fields"
)

func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "classify <token>...",
		Short:       "Classify OCR tokens into name, category and date fields",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, ok := fields.DefaultClassifier().Classify(args)
			if !ok {
				return errors.New("no usable tokens")
			}
			out := cmd.OutOrStdout()
			for _, slot := range fields.AllSlots {
				if value := fs.Get(slot); value != "" {
					fmt.Fprintf(out, "%s: %s\n", slot, value)
				}
			}
			return nil
		},
	}
}

func newNormalizeDateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "normalize-date <text>...",
		Short:       "Normalize free-form dates to YYYY-MM-DD",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				fmt.Fprintf(out, "%s\t%s\n", raw, dash(dates.Normalize(raw)))
			}
			return nil
		},
	}
}
