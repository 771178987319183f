package entity

// Patch holds the optional new field values of an update request.
// A nil pointer means "leave unchanged". There is deliberately no ID field.
type Patch struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Category    *string `json:"category,omitempty" yaml:"category,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Location    *string `json:"location,omitempty" yaml:"location,omitempty"`
	Status      *Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Description == nil &&
		p.Location == nil && p.Status == nil
}

// Apply returns a copy of e with the patch's fields set.
func (p Patch) Apply(e Entity) Entity {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	return e
}

// Fields lists the names of the fields the patch sets, in declaration order.
func (p Patch) Fields() []string {
	fields := []string{}
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Location != nil {
		fields = append(fields, "location")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// StringPtr is a convenience for building patches from literals.
func StringPtr(s string) *string {
	return &s
}
