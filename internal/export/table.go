package export

import (
	"fmt"
	"io"

	"github.com/dyluth/prdflow/internal/evaluate"
	"github.com/dyluth/prdflow/pkg/assign"
)

// FormatAssignments writes assignments as a table with truncated stories.
// Returns the number of rows written.
func FormatAssignments(w io.Writer, assignments assign.Assignment) int {
	if len(assignments) == 0 {
		fmt.Fprintln(w, "No assignments")
		return 0
	}

	fmt.Fprintf(w, "%-4s %-20s %s\n", "#", "ENGINEER", "USER STORY")
	fmt.Fprintf(w, "%-4s %-20s %s\n", "----", "--------------------", "------------------------------------------------------------")

	for i, p := range assignments {
		fmt.Fprintf(w, "%-4d %-20s %s\n", i+1, truncate(p.Engineer, 20), truncate(p.Story, 60))
	}

	countMsg := "assignment"
	if len(assignments) != 1 {
		countMsg = "assignments"
	}
	fmt.Fprintf(w, "\n%d %s\n", len(assignments), countMsg)

	return len(assignments)
}

// FormatWorkload writes stories per engineer in roster order.
func FormatWorkload(w io.Writer, assignments assign.Assignment, roster assign.Roster) {
	counts := assignments.Counts(roster)
	fmt.Fprintf(w, "%-20s %-20s %s\n", "ENGINEER", "ROLE", "STORIES")
	for _, e := range roster {
		fmt.Fprintf(w, "%-20s %-20s %d\n", truncate(e.ID, 20), truncate(e.Role, 20), counts[e.ID])
	}
}

// FormatReport writes evaluation metrics, one per line.
func FormatReport(w io.Writer, report evaluate.Report) {
	for _, m := range report {
		fmt.Fprintf(w, "%-30s %.4f\n", m.Name, m.Value)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
