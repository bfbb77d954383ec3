package resource

import "strings"

type Value = any

// Source identifies which backend a resource was read from.
type Source string

const (
	SourceMutable     Source = "mutable"
	SourceDeclarative Source = "declarative"
)

// Resource is a single identity-platform resource. Attributes are opaque to
// the store; their schema belongs to the resource type.
type Resource struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Source     Source         `json:"source" yaml:"source"`
	// Revision is only set for mutable records and changes on every write.
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
}

// IsDeclarative reports whether the record came from a declarative file.
func (r Resource) IsDeclarative() bool {
	return r.Source == SourceDeclarative
}

// Clone returns a copy whose attribute tree shares no maps or slices with r.
func (r Resource) Clone() Resource {
	cloned := r
	cloned.Attributes = CloneAttributes(r.Attributes)
	return cloned
}

// FromDocument splits a decoded document into identifier, optional type and
// attributes. Reserved keys are id, type, source and revision.
func FromDocument(document map[string]any) (id string, resourceType string, attributes map[string]any) {
	attributes = make(map[string]any, len(document))
	for key, value := range document {
		switch key {
		case "id":
			if text, ok := value.(string); ok {
				id = strings.TrimSpace(text)
			}
		case "type":
			if text, ok := value.(string); ok {
				resourceType = strings.TrimSpace(text)
			}
		case "source", "revision":
		default:
			attributes[key] = value
		}
	}
	return id, resourceType, attributes
}
