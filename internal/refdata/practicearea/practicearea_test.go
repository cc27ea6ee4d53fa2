package practicearea

import (
	"testing"

	"matter_intake_backend/platform/apperr"
)

func TestResolveExact(t *testing.T) {
	id, err := Resolve("Commercial")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != 60481 {
		t.Fatalf("id = %d, want 60481", id)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	id, err := Resolve("commercial litigation")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != 60484 {
		t.Fatalf("id = %d, want 60484", id)
	}
}

func TestResolveTrimsWhitespace(t *testing.T) {
	if _, err := Resolve("  Employment "); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("Interplanetary Law")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindReferenceResolution) {
		t.Fatalf("kind = %v", apperr.GetKind(err))
	}
}
