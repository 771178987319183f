package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/dyluth/errand/pkg/entity"
)

// OutputFormat specifies how to format the entity list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated fields
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete entities as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a user supplied --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSONL:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s (must be 'default' or 'jsonl')", s)
	}
}

// Source yields the entities to list, in display order.
type Source interface {
	Entities(ctx context.Context) ([]entity.Entity, error)
}

// Lister is satisfied by the in-memory repository.
type Lister interface {
	List() []entity.Entity
}

type listerSource struct {
	lister Lister
}

// FromRepository lists entities in repository (insertion) order.
func FromRepository(l Lister) Source {
	return listerSource{lister: l}
}

func (s listerSource) Entities(context.Context) ([]entity.Entity, error) {
	return s.lister.List(), nil
}

// MirrorReader is satisfied by the Redis remote.
type MirrorReader interface {
	MirroredIDs(ctx context.Context) ([]string, error)
	GetMirrored(ctx context.Context, id string) (*entity.Entity, error)
}

type mirrorSource struct {
	mirror MirrorReader
	warn   io.Writer
}

// FromMirror lists the entities mirrored to Redis, oldest first.
// Malformed or vanished records are skipped with a warning written to warn.
func FromMirror(m MirrorReader, warn io.Writer) Source {
	return mirrorSource{mirror: m, warn: warn}
}

func (s mirrorSource) Entities(ctx context.Context) ([]entity.Entity, error) {
	ids, err := s.mirror.MirroredIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mirrored entities: %w", err)
	}

	entities := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.mirror.GetMirrored(ctx, id)
		if err != nil {
			if s.warn != nil {
				fmt.Fprintf(s.warn, "⚠️  Skipping mirrored entity: id=%s (error: %v)\n", id, err)
			}
			continue
		}
		entities = append(entities, *e)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].CreatedAtMs != entities[j].CreatedAtMs {
			return entities[i].CreatedAtMs < entities[j].CreatedAtMs
		}
		return entities[i].ID < entities[j].ID
	})

	return entities, nil
}

// FilterCriteria defines filtering options for the list command.
// All filters are ANDed together.
type FilterCriteria struct {
	Status       entity.Status // Exact status match, empty = no filter
	CategoryGlob string        // Glob pattern for category, empty = no filter
}

// matchesFilter returns true if the entity matches all filter criteria.
func (fc *FilterCriteria) matchesFilter(e *entity.Entity) bool {
	if fc.Status != "" && e.Status != fc.Status {
		return false
	}

	if fc.CategoryGlob != "" {
		matched, err := filepath.Match(fc.CategoryGlob, e.Category)
		if err != nil || !matched {
			return false
		}
	}

	return true
}

// ListEntities writes the entities from src that match filters to w.
func ListEntities(ctx context.Context, src Source, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	all, err := src.Entities(ctx)
	if err != nil {
		return err
	}

	entities := make([]entity.Entity, 0, len(all))
	for i := range all {
		if filters != nil && !filters.matchesFilter(&all[i]) {
			continue
		}
		entities = append(entities, all[i])
	}

	switch format {
	case OutputFormatDefault:
		FormatTable(w, entities)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, entities); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
