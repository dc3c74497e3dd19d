package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// FormatTable writes frame records as a table followed by the summary line
// of s. The summary covers the whole run, so rows may be a filtered subset.
// Returns the number of records formatted.
func FormatTable(w io.Writer, records []*FrameRecord, s *Summary, runID string) int {
	if len(records) == 0 && s.Total == 0 {
		fmt.Fprintf(w, "No frames recorded for run '%s'\n", runID)
		return 0
	}

	fmt.Fprintf(w, "Frames for run '%s':\n\n", runID)
	if len(records) == 0 {
		fmt.Fprintln(w, "No frames match the given filters")
		writeSummary(w, s)
		return 0
	}

	fmt.Fprintf(w, "%-6s %-10s %-5s %-9s %-8s %s\n",
		"FRAME", "SCALE", "UNIT", "STATUS", "TIME", "OUTPUT")
	fmt.Fprintf(w, "%-6s %-10s %-5s %-9s %-8s %s\n",
		"------", "----------", "-----", "---------", "--------", "----------------------------------------")

	for _, r := range records {
		fmt.Fprintf(w, "%-6d %-10s %-5d %-9s %-8s %s\n",
			r.Index,
			formatScale(r.Scale),
			r.Unit,
			string(r.Status),
			formatDuration(r.DurationMs),
			formatOutput(r),
		)
	}

	writeSummary(w, s)
	return len(records)
}

func writeSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "\n%d of %d frames rendered", len(s.Rendered), s.Total)
	if len(s.Failed) > 0 {
		fmt.Fprintf(w, ", %d failed %s", len(s.Failed), formatIndices(s.Failed))
	}
	if len(s.Missing) > 0 {
		fmt.Fprintf(w, ", %d lost %s", len(s.Missing), formatIndices(s.Missing))
	}
	fmt.Fprintln(w)
}

// FormatJSONL writes frame records as line-delimited JSON.
func FormatJSONL(w io.Writer, records []*FrameRecord) error {
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal frame record to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

func formatScale(scale float64) string {
	return strconv.FormatFloat(scale, 'f', 6, 64)
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatOutput shows the path of a rendered frame or the first line of the
// error of a failed one, truncated to 40 characters.
func formatOutput(r *FrameRecord) string {
	out := r.Path
	if r.Status == FrameStatusFailed {
		out = r.Error
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "-"
	}
	if len(out) > 40 {
		return out[:37] + "..."
	}
	return out
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
