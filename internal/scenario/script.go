// Package scenario runs scripted sequences of use case requests against one
// orchestrator, so state carries over from step to step.
package scenario

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dyluth/errand/internal/usecase"
	"github.com/dyluth/errand/pkg/entity"
	"gopkg.in/yaml.v3"
)

// Step actions. approve, reject and archive are status updates.
const (
	StepCreate  = "create"
	StepUpdate  = "update"
	StepDelete  = "delete"
	StepView    = "view"
	StepApprove = "approve"
	StepReject  = "reject"
	StepArchive = "archive"
)

// StatusFor maps a status transition step to the status it sets.
var StatusFor = map[string]entity.Status{
	StepApprove: entity.StatusActive,
	StepReject:  entity.StatusRejected,
	StepArchive: entity.StatusArchived,
}

var fieldNames = map[string]bool{
	"id":          true,
	"name":        true,
	"category":    true,
	"description": true,
	"location":    true,
	"status":      true,
}

// Step is one scripted request
type Step struct {
	Action string            `yaml:"action"`
	ID     string            `yaml:"id,omitempty"`
	Fields map[string]string `yaml:"fields,omitempty"` // create and update only
	Expect string            `yaml:"expect,omitempty"` // optional outcome assertion
}

// Script is the top-level script file
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Load reads and validates a script file
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates script bytes. Field values are not validated here;
// invalid values are the orchestrator's to reject.
func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("invalid script: no steps defined")
	}
	for i := range script.Steps {
		if err := script.Steps[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid script: step %d: %w", i+1, err)
		}
	}

	return &script, nil
}

// Validate checks the step's action, fields and expectation
func (s *Step) Validate() error {
	switch s.Action {
	case StepCreate:
	case StepUpdate:
		if s.ID == "" {
			return fmt.Errorf("%s requires an id", s.Action)
		}
		if len(s.Fields) == 0 {
			return fmt.Errorf("update requires fields")
		}
		if _, ok := s.Fields["id"]; ok {
			return fmt.Errorf("update cannot change the id")
		}
	case StepDelete, StepView, StepApprove, StepReject, StepArchive:
		if s.ID == "" {
			return fmt.Errorf("%s requires an id", s.Action)
		}
		if len(s.Fields) > 0 {
			return fmt.Errorf("%s does not take fields", s.Action)
		}
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action: %s (valid: create, update, delete, view, approve, reject, archive)", s.Action)
	}

	var unknown []string
	for name := range s.Fields {
		if !fieldNames[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", "))
	}

	if s.Expect != "" {
		if _, err := usecase.ParseOutcome(s.Expect); err != nil {
			return err
		}
	}

	return nil
}

// Request converts the step into an orchestrator request
func (s *Step) Request() usecase.Request {
	switch s.Action {
	case StepCreate:
		e := entity.Entity{
			ID:          s.ID,
			Name:        s.Fields["name"],
			Category:    s.Fields["category"],
			Description: s.Fields["description"],
			Location:    s.Fields["location"],
			Status:      entity.Status(s.Fields["status"]),
		}
		if id, ok := s.Fields["id"]; ok {
			e.ID = id
		}
		return usecase.Request{Action: usecase.ActionCreate, ID: e.ID, Entity: e}

	case StepUpdate:
		return usecase.Request{Action: usecase.ActionUpdate, ID: s.ID, Patch: PatchFromFields(s.Fields)}

	case StepApprove, StepReject, StepArchive:
		return usecase.Request{Action: usecase.ActionUpdate, ID: s.ID, Patch: entity.StatusPatch(StatusFor[s.Action])}

	case StepDelete:
		return usecase.Request{Action: usecase.ActionDelete, ID: s.ID}

	default:
		return usecase.Request{Action: usecase.ActionView, ID: s.ID}
	}
}

// PatchFromFields builds a patch from field name/value pairs. Unknown names are ignored.
func PatchFromFields(fields map[string]string) entity.Patch {
	var p entity.Patch
	for name, value := range fields {
		v := value
		switch name {
		case "name":
			p.Name = &v
		case "category":
			p.Category = &v
		case "description":
			p.Description = &v
		case "location":
			p.Location = &v
		case "status":
			st := entity.Status(v)
			p.Status = &st
		}
	}
	return p
}
