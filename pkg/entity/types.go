package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Entity is the unit of CRUD for every use case.
// ID is assigned once and never changes; the repository guarantees uniqueness.
type Entity struct {
	ID          string `json:"id" yaml:"id" validate:"required,entityid,max=64"`
	Name        string `json:"name" yaml:"name" validate:"required,notblank,max=128"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty" validate:"max=64"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" validate:"max=1024"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty" validate:"max=256"`
	Status      Status `json:"status" yaml:"status,omitempty"`
	CreatedAtMs int64  `json:"created_at_ms,omitempty" yaml:"-"`
	UpdatedAtMs int64  `json:"updated_at_ms,omitempty" yaml:"-"`
}

// Status is the optional lifecycle flag carried by an entity.
type Status string

const (
	// StatusPending marks an entity awaiting a decision (e.g. a registration request)
	StatusPending Status = "pending"

	// StatusActive is the default status for seeded and created entities
	StatusActive Status = "active"

	// StatusRejected marks an entity that was explicitly refused
	StatusRejected Status = "rejected"

	// StatusArchived marks an entity that is kept but no longer shown as current
	StatusArchived Status = "archived"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusActive, StatusRejected, StatusArchived}

var (
	entityValidate *validator.Validate

	idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

func init() {
	entityValidate = validator.New()

	_ = entityValidate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = entityValidate.RegisterValidation("entityid", func(fl validator.FieldLevel) bool {
		return idPattern.MatchString(fl.Field().String())
	})
}

// Validate checks the entity's fields against its struct tags and status enum.
// The returned error names the offending fields in lower case.
func (e *Entity) Validate() error {
	if err := entityValidate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return formatFieldErrors(fieldErrs)
		}
		return fmt.Errorf("failed to validate entity: %w", err)
	}

	if err := e.Status.Validate(); err != nil {
		return fmt.Errorf("status: %w", err)
	}

	return nil
}

// Normalize fills defaults that are allowed to be omitted in seed data and create requests.
func (e *Entity) Normalize() {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	if e.Status == "" {
		e.Status = StatusActive
	}
}

// Validate checks if the Status is a valid enum value.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusActive, StatusRejected, StatusArchived:
		return nil
	default:
		return fmt.Errorf("unknown status: %q", s)
	}
}

// ParseStatus converts user input into a Status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// NewID returns a fresh identifier for entities created without one.
func NewID() string {
	return uuid.New().String()
}

// formatFieldErrors turns validator output into "name: required; id: entityid" form.
func formatFieldErrors(errs validator.ValidationErrors) error {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag = fmt.Sprintf("%s=%s", tag, fe.Param())
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), tag))
	}
	return errors.New(strings.Join(parts, "; "))
}
