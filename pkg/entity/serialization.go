package entity

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Entity and a Redis hash.
//
// Every field maps to one hash field; timestamps are stored as decimal strings.

// EntityToHash converts an Entity to a Redis hash format.
func EntityToHash(e *Entity) map[string]interface{} {
	return map[string]interface{}{
		"id":            e.ID,
		"name":          e.Name,
		"category":      e.Category,
		"description":   e.Description,
		"location":      e.Location,
		"status":        string(e.Status),
		"created_at_ms": e.CreatedAtMs,
		"updated_at_ms": e.UpdatedAtMs,
	}
}

// HashToEntity converts a Redis hash back to an Entity.
// Returns an error when the hash has no id or a malformed timestamp.
func HashToEntity(hash map[string]string) (*Entity, error) {
	if hash["id"] == "" {
		return nil, fmt.Errorf("hash has no id field")
	}

	createdAtMs, err := parseMillis(hash["created_at_ms"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}
	updatedAtMs, err := parseMillis(hash["updated_at_ms"])
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at_ms field: %w", err)
	}

	return &Entity{
		ID:          hash["id"],
		Name:        hash["name"],
		Category:    hash["category"],
		Description: hash["description"],
		Location:    hash["location"],
		Status:      Status(hash["status"]),
		CreatedAtMs: createdAtMs,
		UpdatedAtMs: updatedAtMs,
	}, nil
}

func parseMillis(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
