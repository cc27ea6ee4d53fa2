package fieldmap

import (
	"context"
	"errors"
	"testing"

	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/logger"
)

type fakeLister struct {
	defs []registry.CustomFieldDefinition
	err  error
}

func (f fakeLister) ListCustomFields(context.Context, string) ([]registry.CustomFieldDefinition, error) {
	return f.defs, f.err
}

func TestFromDefinitions(t *testing.T) {
	m := FromDefinitions([]registry.CustomFieldDefinition{
		{ID: 1, Name: "Instruction Ref", ParentType: "Contact"},
		{ID: 2, Name: "Folder Structure", ParentType: "Matter"},
	})

	if name, ok := m.NameByID(1); !ok || name != "Instruction Ref" {
		t.Fatalf("NameByID = %q, %v", name, ok)
	}
	if id, ok := m.IDByName("Folder Structure"); !ok || id != 2 {
		t.Fatalf("IDByName = %d, %v", id, ok)
	}
	if _, ok := m.NameByID(99); ok {
		t.Fatal("unknown id resolved")
	}

	contact := m.DefinitionsFor("Contact")
	if len(contact) != 1 || contact[0].ID != 1 {
		t.Fatalf("DefinitionsFor(Contact) = %+v", contact)
	}
}

func TestLoaderFailureReturnsEmptyMap(t *testing.T) {
	loader := NewLoader(fakeLister{err: errors.New("registry down")}, logger.New("test"))

	m := loader.Load(context.Background(), "tok")
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
	if _, ok := m.NameByID(1); ok {
		t.Fatal("empty map resolved an id")
	}
}

func TestLoaderSuccess(t *testing.T) {
	loader := NewLoader(fakeLister{defs: []registry.CustomFieldDefinition{
		{ID: 1, Name: "A", ParentType: "Contact"},
	}}, logger.New("test"))

	m := loader.Load(context.Background(), "tok")
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}
