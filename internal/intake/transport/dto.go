// Package transport defines the inbound DTOs for the intake module.
package transport

import (
	"strings"

	registry "matter_intake_backend/internal/registry/transport"
)

// ClientRecord is one entry of the form's client_information list. Upstream
// producers of the intake form have varied historically, so the record is
// kept as a raw map and read through ordered key chains rather than a fixed
// struct that would reject older variants.
type ClientRecord map[string]any

// First returns the first non-empty string value among the given keys.
func (r ClientRecord) First(keys ...string) string {
	for _, key := range keys {
		if raw, ok := r[key]; ok {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// CompanyDetails returns the nested company_details record, if any.
func (r ClientRecord) CompanyDetails() (ClientRecord, bool) {
	raw, ok := r["company_details"]
	if !ok {
		return nil, false
	}
	nested, ok := raw.(map[string]any)
	if !ok || len(nested) == 0 {
		return nil, false
	}
	return ClientRecord(nested), true
}

// MatterDetails carries the matter-level fields of the intake form.
type MatterDetails struct {
	Description     string `json:"description"`
	PracticeArea    string `json:"practice_area"`
	Stage           string `json:"stage,omitempty"`
	DisputeValue    string `json:"dispute_value,omitempty"`
	FolderStructure string `json:"folder_structure,omitempty"`
	InstructionRef  string `json:"instruction_ref"`
}

// TeamAssignments carries the personnel initials from the intake form.
type TeamAssignments struct {
	FeeEarner                    string `json:"fee_earner,omitempty"`
	SupervisingPartner           string `json:"supervising_partner,omitempty"`
	OriginatingSolicitorInitials string `json:"originating_solicitor_initials,omitempty"`
}

// InstructionSummary is a side-channel of statuses gathered by the intake
// workflow, used only to enrich the confirmation notification.
type InstructionSummary struct {
	ComplianceStatus   string   `json:"compliance_status,omitempty"`
	VerificationStatus string   `json:"verification_status,omitempty"`
	PaymentStatus      string   `json:"payment_status,omitempty"`
	RiskStatus         string   `json:"risk_status,omitempty"`
	Documents          []string `json:"documents,omitempty"`
}

// IntakeForm is the client-onboarding submission produced by the intake
// workflow. Owned by the caller; read-only to this subsystem.
type IntakeForm struct {
	ClientInformation  []ClientRecord      `json:"client_information"`
	MatterDetails      MatterDetails       `json:"matter_details"`
	TeamAssignments    TeamAssignments     `json:"team_assignments"`
	InstructionSummary *InstructionSummary `json:"instruction_summary,omitempty"`
}

// OpenMatterRequest asks for a matter to be created for an intake submission.
// ContactIDs/CompanyID carry identifiers from a prior contact-sync step so
// reconciliation is not re-run.
type OpenMatterRequest struct {
	FormData   IntakeForm `json:"formData" validate:"required"`
	Initials   string     `json:"initials" validate:"required"`
	ContactIDs []int64    `json:"contactIds,omitempty"`
	CompanyID  *int64     `json:"companyId,omitempty"`
}

// SyncContactsRequest asks for the form's client records to be reconciled
// into the registry without creating a matter.
type SyncContactsRequest struct {
	FormData IntakeForm `json:"formData" validate:"required"`
	Initials string     `json:"initials" validate:"required"`
}

// ReconcileOutcome is the per-entity result of a contact reconciliation.
// EmptyFieldCount is diagnostic only.
type ReconcileOutcome struct {
	RegistryID      int64  `json:"registryId"`
	EntityType      string `json:"entityType"`
	EmptyFieldCount int    `json:"emptyFieldCount"`
}

// OpenMatterResponse is returned on successful matter creation.
type OpenMatterResponse struct {
	OK     bool            `json:"ok"`
	Matter registry.Matter `json:"matter"`
}

// SyncContactsResponse is returned on successful contact sync.
type SyncContactsResponse struct {
	OK      bool               `json:"ok"`
	Results []ReconcileOutcome `json:"results"`
}
