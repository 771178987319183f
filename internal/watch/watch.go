// Package watch streams commit events mirrored to Redis.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dyluth/errand/internal/remote"
)

// OutputFormat selects how events are written.
type OutputFormat string

const (
	// OutputFormatDefault writes one human-readable line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL writes each commit as one JSON object per line
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Subscriber is satisfied by remote.Redis.
type Subscriber interface {
	SubscribeCommits(ctx context.Context) (*remote.Subscription, error)
}

// Options control which events are streamed and when to stop.
type Options struct {
	Format   OutputFormat
	Action   string // Exact action match, empty = all
	EntityID string // Glob on entity id, empty = all
	Limit    int    // Stop after this many written events, 0 = until ctx ends
	Ready    func() // Called once the subscription is confirmed
}

func (o *Options) matches(c *remote.Commit) bool {
	if o.Action != "" && c.Action != o.Action {
		return false
	}
	if o.EntityID != "" {
		matched, err := filepath.Match(o.EntityID, c.EntityID)
		if err != nil || !matched {
			return false
		}
	}
	return true
}

// StreamCommits writes matching commit events to w until ctx ends, the limit is
// reached or the subscription closes. Malformed events are reported to warn and skipped.
// Returns nil when stopped by ctx or the limit.
func StreamCommits(ctx context.Context, sub Subscriber, opts Options, w, warn io.Writer) error {
	if opts.Format == "" {
		opts.Format = OutputFormatDefault
	}
	if opts.Format != OutputFormatDefault && opts.Format != OutputFormatJSONL {
		return fmt.Errorf("unknown output format: %s", opts.Format)
	}

	subscription, err := sub.SubscribeCommits(ctx)
	if err != nil {
		return err
	}
	defer subscription.Close()

	if opts.Ready != nil {
		opts.Ready()
	}

	written := 0
	events := subscription.Events()
	errs := subscription.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if warn != nil {
				fmt.Fprintf(warn, "⚠️  %v\n", err)
			}

		case commit, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("commit subscription closed")
			}
			if !opts.matches(commit) {
				continue
			}

			if err := writeCommit(w, commit, opts.Format); err != nil {
				return err
			}

			written++
			if opts.Limit > 0 && written >= opts.Limit {
				return nil
			}
		}
	}
}

func writeCommit(w io.Writer, c *remote.Commit, format OutputFormat) error {
	if format == OutputFormatJSONL {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal commit: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintln(w, FormatCommit(c)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// FormatCommit renders a commit as one human-readable line.
func FormatCommit(c *remote.Commit) string {
	ts := "--:--:--"
	if c.SentAtMs > 0 {
		ts = time.UnixMilli(c.SentAtMs).Format("15:04:05")
	}

	switch {
	case c.Removes():
		return fmt.Sprintf("[%s] 🗑️  Deleted: %s by=%s", ts, c.EntityID, c.Actor)
	case c.Action == "create":
		return fmt.Sprintf("[%s] ✨ Created: %s %q by=%s", ts, c.EntityID, c.Entity.Name, c.Actor)
	default:
		return fmt.Sprintf("[%s] ✏️  Updated: %s %q status=%s by=%s", ts, c.EntityID, c.Entity.Name, c.Entity.Status, c.Actor)
	}
}
