package runs

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/prdflow/internal/store"
)

// FormatTable writes runs as a table with columns ID, MODE, PRODUCT,
// STORIES, ASSIGNED, ENGINEERS and AGE. Returns the number of runs written.
func FormatTable(w io.Writer, runs []*store.Run, namespace string) int {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs found in namespace '%s'\n", namespace)
		return 0
	}

	fmt.Fprintf(w, "Runs in namespace '%s':\n\n", namespace)

	fmt.Fprintf(w, "%-10s %-13s %-20s %-7s %-8s %-9s %s\n",
		"ID", "MODE", "PRODUCT", "STORIES", "ASSIGNED", "ENGINEERS", "AGE")
	fmt.Fprintf(w, "%-10s %-13s %-20s %-7s %-8s %-9s %s\n",
		"----------", "-------------", "--------------------", "-------", "--------", "---------", "--------")

	for _, r := range runs {
		fmt.Fprintf(w, "%-10s %-13s %-20s %-7d %-8d %-9d %s\n",
			formatID(r.ID),
			r.Mode,
			formatProduct(r.ProductName),
			len(r.UserStories),
			len(r.Assignments),
			r.EngineerCount,
			formatAge(r.CreatedAtMs, time.Now()),
		)
	}

	noun := "run"
	if len(runs) != 1 {
		noun = "runs"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(runs), noun)

	return len(runs)
}

// FormatJSONL writes each run as one compact JSON object per line.
func FormatJSONL(w io.Writer, runs []*store.Run) error {
	for _, r := range runs {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal run to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes a run as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, run *store.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// FormatEvent writes a one-line summary of a run as it arrives on the
// event channel. Used by runs watch.
func FormatEvent(w io.Writer, run *store.Run) {
	fmt.Fprintf(w, "[%s] run %s mode=%s stories=%d assigned=%d dropped=%d\n",
		time.UnixMilli(run.CreatedAtMs).Format("15:04:05"),
		formatID(run.ID),
		run.Mode,
		len(run.UserStories),
		len(run.Assignments),
		run.DroppedStories,
	)
}

// formatID truncates a run ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatProduct(name string) string {
	if name == "" {
		return "-"
	}
	if len(name) > 20 {
		return name[:17] + "..."
	}
	return name
}

// formatAge renders the time between createdAtMs and now as "5s ago",
// "3m ago", "2h ago" or "4d ago".
func formatAge(createdAtMs int64, now time.Time) string {
	if createdAtMs == 0 {
		return "-"
	}

	diff := now.Sub(time.UnixMilli(createdAtMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
