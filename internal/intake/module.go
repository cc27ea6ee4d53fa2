// Package intake provides the client-onboarding intake bounded context
// module. It wires the orchestration service to the registry client, the
// credential provider and the reference-data repositories, and mounts its
// routes on the authenticated API group.
package intake

import (
	"matter_intake_backend/internal/credentials"
	"matter_intake_backend/internal/events"
	apphttp "matter_intake_backend/internal/http"
	"matter_intake_backend/internal/intake/fieldmap"
	"matter_intake_backend/internal/intake/handler"
	"matter_intake_backend/internal/intake/reconcile"
	"matter_intake_backend/internal/intake/service"
	"matter_intake_backend/internal/refdata/practicearea"
	"matter_intake_backend/internal/refdata/risk"
	"matter_intake_backend/internal/refdata/teamdir"
	registryclient "matter_intake_backend/internal/registry/client"
	"matter_intake_backend/platform/logger"
	"matter_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module with its dependencies.
// Telemetry and archiver are optional collaborators; pass nil to disable.
func NewModule(
	pool *pgxpool.Pool,
	registry *registryclient.Client,
	creds *credentials.Provider,
	bus events.Bus,
	telemetry service.Telemetry,
	archiver service.SubmissionArchiver,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(service.Deps{
		Credentials:   creds,
		Matters:       registry,
		Fields:        fieldmap.NewLoader(registry, log),
		Reconciler:    reconcile.New(registry, log),
		TeamDir:       teamdir.New(pool),
		Risk:          risk.New(pool),
		PracticeAreas: practicearea.Resolve,
		Bus:           bus,
		Telemetry:     telemetry,
		Archiver:      archiver,
		Logger:        log,
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "intake" }

// Service exposes the orchestration service to sibling modules and tests.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the intake endpoints on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/intake"))
}
