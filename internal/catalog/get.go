package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// GetEntity finds one entity by exact id in src and writes it as pretty-printed JSON.
func GetEntity(ctx context.Context, src Source, id string, w io.Writer) error {
	entities, err := src.Entities(ctx)
	if err != nil {
		return err
	}

	for i := range entities {
		if entities[i].ID == id {
			if err := FormatSingleJSON(w, &entities[i]); err != nil {
				return fmt.Errorf("failed to format entity: %w", err)
			}
			return nil
		}
	}

	return &EntityNotFoundError{EntityID: id}
}

// IDs returns the ids of every entity in src, in source order.
func IDs(ctx context.Context, src Source) ([]string, error) {
	entities, err := src.Entities(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
	}
	return ids, nil
}

// EntityNotFoundError represents a specific "entity not found" error.
type EntityNotFoundError struct {
	EntityID string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity with ID '%s' not found", e.EntityID)
}

// IsNotFound returns true if the error is an EntityNotFoundError.
func IsNotFound(err error) bool {
	var nf *EntityNotFoundError
	return errors.As(err, &nf)
}
