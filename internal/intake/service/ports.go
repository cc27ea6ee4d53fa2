package service

import (
	"context"
	"encoding/json"

	"matter_intake_backend/internal/intake/fieldmap"
	"matter_intake_backend/internal/intake/reconcile"
	registry "matter_intake_backend/internal/registry/transport"
)

// CredentialProvider exchanges a tenant's stored credentials for a bearer token.
type CredentialProvider interface {
	Authenticate(ctx context.Context, tenantInitials string) (string, error)
}

// MatterCreator is the registry operation that creates the matter record.
type MatterCreator interface {
	CreateMatter(ctx context.Context, token string, payload registry.MatterPayload) (*registry.Matter, json.RawMessage, error)
}

// FieldMapLoader loads the registry's custom-field schema, best-effort.
type FieldMapLoader interface {
	Load(ctx context.Context, token string) fieldmap.FieldMap
}

// ContactReconciler performs lookup-or-create-or-update for one entity.
type ContactReconciler interface {
	CreateOrUpdate(ctx context.Context, token string, payload registry.ContactPayload, fields fieldmap.FieldMap) (reconcile.Result, error)
}

// TeamDirectory resolves team members by initials.
type TeamDirectory interface {
	UserIDByInitials(ctx context.Context, initials string) (int64, error)
	EmailByInitials(ctx context.Context, initials string) (string, error)
}

// RiskLookup finds a prior risk-assessment outcome for an instruction reference.
type RiskLookup interface {
	ResultByReference(ctx context.Context, instructionRef string) (result string, ok bool, err error)
}

// PracticeAreaResolver maps a practice-area name to its registry id.
type PracticeAreaResolver func(name string) (int64, error)

// Telemetry receives structured start/success/failure events. Purely
// observational; implementations must never fail the operation.
type Telemetry interface {
	Started(ctx context.Context, operation, tenant, instructionRef string)
	Succeeded(ctx context.Context, operation, tenant, instructionRef string, elapsedMs int64)
	Failed(ctx context.Context, operation, tenant, instructionRef, stage string, err error)
}

// SubmissionArchiver stores the raw intake submission for audit, best-effort.
type SubmissionArchiver interface {
	ArchiveSubmission(ctx context.Context, instructionRef string, submission any) error
}
