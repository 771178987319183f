package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/errand/pkg/entity"
)

// FormatTable writes entities as a formatted table to the provided writer.
// Returns the number of entities formatted.
func FormatTable(w io.Writer, entities []entity.Entity) int {
	if len(entities) == 0 {
		fmt.Fprintf(w, "No entities found\n")
		return 0
	}

	fmt.Fprintf(w, "%-12s %-9s %-16s %-28s %-18s %s\n",
		"ID", "STATUS", "CATEGORY", "NAME", "LOCATION", "AGE")
	fmt.Fprintf(w, "%-12s %-9s %-16s %-28s %-18s %s\n",
		"------------", "---------", "----------------", "----------------------------", "------------------", "--------")

	for _, e := range entities {
		fmt.Fprintf(w, "%-12s %-9s %-16s %-28s %-18s %s\n",
			truncate(e.ID, 12),
			e.Status,
			orDash(truncate(e.Category, 16)),
			truncate(firstLine(e.Name), 28),
			orDash(truncate(e.Location, 18)),
			formatTimestamp(e.CreatedAtMs),
		)
	}

	countMsg := "entity"
	if len(entities) != 1 {
		countMsg = "entities"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(entities), countMsg)

	return len(entities)
}

// FormatJSONL writes entities as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, entities []entity.Entity) error {
	for i := range entities {
		data, err := json.Marshal(&entities[i])
		if err != nil {
			return fmt.Errorf("failed to marshal entity to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single entity as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, e *entity.Entity) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entity to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// firstLine returns the first non-empty trimmed line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatTimestamp formats Unix milliseconds as relative time like "2m ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
