package printer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/errand/internal/usecase"
	"github.com/dyluth/errand/pkg/entity"
)

// Confirmer asks for a yes/no answer on a terminal before every commit.
// Anything other than "y" or "yes" (including EOF) declines.
type Confirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConfirmer creates a terminal confirmation gate
func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: bufio.NewReader(in), out: out}
}

// Confirm implements usecase.Confirmer
func (c *Confirmer) Confirm(ctx context.Context, p usecase.Prompt) bool {
	if ctx.Err() != nil {
		return false
	}

	cyan.Fprintf(c.out, "→ %s %s (as %s)\n", p.Action, promptID(p), p.Actor)
	for _, line := range describeChange(p) {
		fmt.Fprintf(c.out, "    %s\n", line)
	}
	fmt.Fprintf(c.out, "Proceed? [y/N] ")

	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(c.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func promptID(p usecase.Prompt) string {
	switch {
	case p.Next != nil:
		return p.Next.ID
	case p.Current != nil:
		return p.Current.ID
	default:
		return ""
	}
}

// describeChange lists the field level differences between Current and Next
func describeChange(p usecase.Prompt) []string {
	switch {
	case p.Current == nil && p.Next != nil:
		return fieldLines(*p.Next)
	case p.Current != nil && p.Next == nil:
		return []string{fmt.Sprintf("remove %q", p.Current.Name)}
	case p.Current != nil && p.Next != nil:
		var lines []string
		before, after := fieldMap(*p.Current), fieldMap(*p.Next)
		for _, field := range fieldOrder {
			if before[field] != after[field] {
				lines = append(lines, fmt.Sprintf("%s: %q -> %q", field, before[field], after[field]))
			}
		}
		return lines
	default:
		return nil
	}
}

var fieldOrder = []string{"name", "category", "description", "location", "status"}

func fieldMap(e entity.Entity) map[string]string {
	return map[string]string{
		"name":        e.Name,
		"category":    e.Category,
		"description": e.Description,
		"location":    e.Location,
		"status":      string(e.Status),
	}
}

func fieldLines(e entity.Entity) []string {
	values := fieldMap(e)
	lines := make([]string, 0, len(fieldOrder))
	for _, field := range fieldOrder {
		if values[field] != "" {
			lines = append(lines, fmt.Sprintf("%s: %q", field, values[field]))
		}
	}
	return lines
}
