// Package fieldmap fetches the registry's custom-field schema once per
// operation and exposes a field-id <-> field-name bidirectional map.
package fieldmap

import (
	"context"

	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/logger"
)

// FieldMap translates between numeric custom-field ids and the field names
// the registry uses when returning existing values. Immutable for the
// duration of one operation.
type FieldMap struct {
	nameByID map[int64]string
	idByName map[string]int64
	defs     []registry.CustomFieldDefinition
}

// Empty returns a map with no definitions. Downstream merge logic degrades
// gracefully on an empty map: existing ids simply won't be matched, so
// values are appended rather than updated in place.
func Empty() FieldMap {
	return FieldMap{
		nameByID: map[int64]string{},
		idByName: map[string]int64{},
	}
}

// FromDefinitions builds a FieldMap from fetched definitions.
func FromDefinitions(defs []registry.CustomFieldDefinition) FieldMap {
	m := FieldMap{
		nameByID: make(map[int64]string, len(defs)),
		idByName: make(map[string]int64, len(defs)),
		defs:     defs,
	}
	for _, def := range defs {
		m.nameByID[def.ID] = def.Name
		m.idByName[def.Name] = def.ID
	}
	return m
}

// NameByID returns the schema name for a field id.
func (m FieldMap) NameByID(id int64) (string, bool) {
	name, ok := m.nameByID[id]
	return name, ok
}

// IDByName returns the field id for a schema name.
func (m FieldMap) IDByName(name string) (int64, bool) {
	id, ok := m.idByName[name]
	return id, ok
}

// DefinitionsFor returns the definitions applicable to the given parent type.
func (m FieldMap) DefinitionsFor(parentType string) []registry.CustomFieldDefinition {
	var out []registry.CustomFieldDefinition
	for _, def := range m.defs {
		if def.ParentType == parentType {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of known definitions.
func (m FieldMap) Len() int {
	return len(m.defs)
}

// Lister fetches custom-field definitions from the registry.
type Lister interface {
	ListCustomFields(ctx context.Context, token string) ([]registry.CustomFieldDefinition, error)
}

// Loader loads the schema once per operation, best-effort.
type Loader struct {
	api Lister
	log *logger.Logger
}

// NewLoader creates a schema loader.
func NewLoader(api Lister, log *logger.Logger) *Loader {
	return &Loader{api: api, log: log}
}

// Load fetches all definitions in one call. Failures are deliberate
// soft-failures: the schema is only needed to avoid duplicate field writes,
// not for correctness of the create path, so errors leave an empty map.
func (l *Loader) Load(ctx context.Context, token string) FieldMap {
	defs, err := l.api.ListCustomFields(ctx, token)
	if err != nil {
		l.log.Warn("custom field schema fetch failed, merge will append instead of update", "error", err)
		return Empty()
	}
	return FromDefinitions(defs)
}
