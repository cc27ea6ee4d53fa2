// Package reconcile performs lookup-or-create-or-update of contact entities
// against the registry, merging custom-field values against any existing
// record to avoid duplication.
package reconcile

import (
	"context"
	"encoding/json"

	"matter_intake_backend/internal/intake/fieldmap"
	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/apperr"
	"matter_intake_backend/platform/logger"
)

// API is the subset of registry operations reconciliation needs.
type API interface {
	SearchContacts(ctx context.Context, token, email, contactType string) ([]registry.Contact, error)
	GetContact(ctx context.Context, token string, id int64) (*registry.Contact, error)
	CreateContact(ctx context.Context, token string, payload registry.ContactPayload) (*registry.Contact, json.RawMessage, error)
	UpdateContact(ctx context.Context, token string, id int64, payload registry.ContactPayload) (*registry.Contact, json.RawMessage, error)
}

// Result describes one reconciled entity. EmptyFieldCount is a diagnostic
// (fields left blank on the pre-existing record), never used for control flow.
type Result struct {
	RegistryID      int64
	EntityType      string
	EmptyFieldCount int
	Raw             json.RawMessage
}

// Reconciler performs contact reconciliation.
type Reconciler struct {
	api API
	log *logger.Logger
}

// New creates a reconciler.
func New(api API, log *logger.Logger) *Reconciler {
	return &Reconciler{api: api, log: log}
}

// CreateOrUpdate searches the registry for an existing contact of the same
// type and primary email, inserts when absent, otherwise merges and updates
// in place. Each call performs 1-3 outbound registry calls.
func (r *Reconciler) CreateOrUpdate(ctx context.Context, token string, payload registry.ContactPayload, fields fieldmap.FieldMap) (Result, error) {
	email := payload.PrimaryEmail()

	matches, err := r.api.SearchContacts(ctx, token, email, payload.Type)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindReconciliation, "contact search failed: "+err.Error(), err)
	}

	if len(matches) == 0 {
		created, raw, err := r.api.CreateContact(ctx, token, payload)
		if err != nil {
			return Result{}, apperr.Wrap(apperr.KindReconciliation, "contact create failed: "+err.Error(), err)
		}
		r.log.Reconciliation(payload.Type, created.ID, false, 0)
		return Result{RegistryID: created.ID, EntityType: payload.Type, Raw: raw}, nil
	}

	// Multiple contacts sharing an email are not disambiguated further; the
	// first match wins. Surface the ambiguity for operators.
	if len(matches) > 1 {
		r.log.Warn("multiple registry contacts share email, using first match",
			"email", email, "type", payload.Type, "matches", len(matches))
	}
	match := matches[0]

	// The detail fetch is soft: without it we merge against an empty record,
	// which appends values instead of updating them in place.
	existing, err := r.api.GetContact(ctx, token, match.ID)
	if err != nil {
		r.log.Warn("existing contact detail fetch failed, merging against empty record",
			"registry_id", match.ID, "error", err)
		existing = nil
	}

	emptyCount := countEmptyFields(existing, payload.Type, fields)

	payload.CustomFieldValues = mergeCustomFieldValues(payload.CustomFieldValues, existing, fields)

	updated, raw, err := r.api.UpdateContact(ctx, token, match.ID, payload)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindReconciliation, "contact update failed: "+err.Error(), err)
	}

	r.log.Reconciliation(payload.Type, updated.ID, true, emptyCount)
	return Result{RegistryID: updated.ID, EntityType: payload.Type, EmptyFieldCount: emptyCount, Raw: raw}, nil
}

// mergeCustomFieldValues deduplicates the outgoing values by field id (first
// occurrence wins), then attaches the registry-assigned value id wherever the
// existing record already holds a value under the same schema name, so the
// update replaces in place rather than appending a duplicate. Entries whose
// name is unknown stay plain inserts.
func mergeCustomFieldValues(values []registry.CustomFieldValue, existing *registry.Contact, fields fieldmap.FieldMap) []registry.CustomFieldValue {
	deduped := make([]registry.CustomFieldValue, 0, len(values))
	seen := make(map[int64]bool, len(values))
	for _, v := range values {
		if seen[v.CustomField.ID] {
			continue
		}
		seen[v.CustomField.ID] = true
		deduped = append(deduped, v)
	}

	if existing == nil {
		return deduped
	}

	for i := range deduped {
		name, ok := fields.NameByID(deduped[i].CustomField.ID)
		if !ok {
			continue
		}
		if existingValue, ok := findExistingValue(existing.CustomFieldValues, name, fields); ok {
			deduped[i].ID = existingValue.ID
		}
	}

	return deduped
}

func findExistingValue(values []registry.CustomFieldValue, name string, fields fieldmap.FieldMap) (registry.CustomFieldValue, bool) {
	for _, v := range values {
		existingName := v.CustomField.Name
		if existingName == "" {
			existingName, _ = fields.NameByID(v.CustomField.ID)
		}
		if existingName == name && v.ID != nil {
			return v, true
		}
	}
	return registry.CustomFieldValue{}, false
}

// countEmptyFields counts canonical identity fields and applicable custom
// fields absent or empty on the existing record.
func countEmptyFields(existing *registry.Contact, entityType string, fields fieldmap.FieldMap) int {
	if existing == nil {
		return 0
	}

	var canonical []string
	if entityType == "Company" {
		canonical = []string{
			existing.Name,
			existing.PrimaryEmailAddress,
			existing.PrimaryPhoneNumber,
		}
	} else {
		canonical = []string{
			existing.FirstName,
			existing.LastName,
			existing.DateOfBirth,
			existing.PrimaryEmailAddress,
			existing.PrimaryPhoneNumber,
		}
	}

	count := 0
	for _, v := range canonical {
		if v == "" {
			count++
		}
	}
	if len(existing.Addresses) == 0 {
		count++
	}

	populated := make(map[int64]bool, len(existing.CustomFieldValues))
	for _, v := range existing.CustomFieldValues {
		if v.Value != "" {
			populated[v.CustomField.ID] = true
		}
	}
	for _, def := range fields.DefinitionsFor("Contact") {
		if !populated[def.ID] {
			count++
		}
	}

	return count
}
