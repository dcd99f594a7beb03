package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"markerid/internal/fields"
	"markerid/internal/matching"
	"markerid/internal/queue"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiDim    = "\033[2m"
)

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(value, color string, colorize bool) string {
	if !colorize || value == "" {
		return value
	}
	return color + value + ansiReset
}

func statusColor(status queue.Status) string {
	switch status {
	case queue.StatusAssigned:
		return ansiGreen
	case queue.StatusReview:
		return ansiYellow
	case queue.StatusError:
		return ansiRed
	default:
		return ansiDim
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func formatFields(fs fields.FieldSet) string {
	parts := make([]string, 0, len(fields.AllSlots))
	for _, slot := range fields.AllSlots {
		if value := fs.Get(slot); value != "" {
			parts = append(parts, slot.String()+"="+value)
		}
	}
	return strings.Join(parts, " ")
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// printResult describes an engine result: the artifact's own outcome first,
// then every cascade re-match.
func printResult(out io.Writer, res matching.Result, colorize bool) {
	for i, change := range res.Changes {
		prefix := ""
		if i > 0 {
			prefix = "  cascade: "
		}
		id := change.Artifact.ID
		if change.Outcome.Assigned {
			fmt.Fprintf(out, "%s%s %s %s (score %s)\n", prefix, id,
				paint("assigned to", ansiGreen, colorize), change.Label, formatScore(change.Outcome.Score))
		} else {
			where := "unmatched"
			if change.Escalate {
				where = "queued for review"
			}
			fmt.Fprintf(out, "%s%s %s: %s\n", prefix, id,
				paint(where, ansiYellow, colorize), change.Outcome.Reason.Description())
		}
		if change.Cascade && change.EvictedLabel != "" {
			fmt.Fprintf(out, "    evicted from %s by %s\n", change.EvictedLabel, change.EvictedBy)
		}
	}
	if res.Released >= 0 {
		fmt.Fprintf(out, "  released record %d\n", res.Released)
	}
}
