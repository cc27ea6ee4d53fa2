// Package service orchestrates the intake pipeline: credential exchange,
// contact reconciliation, reference resolution and matter creation against
// the practice-management registry.
package service

import (
	"context"
	"fmt"
	"time"

	"matter_intake_backend/internal/events"
	"matter_intake_backend/internal/intake/fieldmap"
	"matter_intake_backend/internal/intake/mapper"
	intake "matter_intake_backend/internal/intake/transport"
	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/apperr"
	"matter_intake_backend/platform/logger"
)

const defaultMatterStatus = "Open"

// Deps wires the orchestration service to its collaborators. Bus, Telemetry
// and Archiver are optional; a nil value disables the side effect.
type Deps struct {
	Credentials   CredentialProvider
	Matters       MatterCreator
	Fields        FieldMapLoader
	Reconciler    ContactReconciler
	TeamDir       TeamDirectory
	Risk          RiskLookup
	PracticeAreas PracticeAreaResolver
	Bus           events.Bus
	Telemetry     Telemetry
	Archiver      SubmissionArchiver
	Logger        *logger.Logger
}

// Service implements the intake operations exposed over HTTP.
type Service struct {
	deps Deps
	log  *logger.Logger
}

// New creates the intake service.
func New(deps Deps) *Service {
	return &Service{deps: deps, log: deps.Logger}
}

// OpenMatter creates a matter in the registry for an intake submission. The
// caller's initials identify both the credential set and the responsible
// attorney. Reference resolution happens before any matter write so that a
// bad practice area or unknown initials never leaves a half-created matter
// behind. Notification, archival and telemetry are trailing side effects and
// cannot fail the operation.
func (s *Service) OpenMatter(ctx context.Context, req intake.OpenMatterRequest) (*intake.OpenMatterResponse, error) {
	form := req.FormData
	ref := form.MatterDetails.InstructionRef
	started := time.Now()
	s.tStarted(ctx, "open_matter", req.Initials, ref)

	if len(form.ClientInformation) == 0 {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "validate",
			apperr.Validation("client_information must contain at least one record"))
	}
	if form.MatterDetails.PracticeArea == "" {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "validate",
			apperr.Validation("matter_details.practice_area is required"))
	}

	log := s.log.WithContext(ctx).WithTenant(req.Initials)

	token, err := s.deps.Credentials.Authenticate(ctx, req.Initials)
	if err != nil {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "authenticate", err)
	}

	fields := s.deps.Fields.Load(ctx, token)
	entities := mapper.MapAll(form.ClientInformation, ref)

	clientID, clientName, err := s.resolveMatterClient(ctx, token, req, entities, fields)
	if err != nil {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "resolve_client", err)
	}

	responsibleID, err := s.deps.TeamDir.UserIDByInitials(ctx, req.Initials)
	if err != nil {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "resolve_attorney",
			apperr.Wrap(apperr.KindReferenceResolution,
				fmt.Sprintf("no registry user for responsible initials %q", req.Initials), err))
	}

	originatingID := responsibleID
	if orig := form.TeamAssignments.OriginatingSolicitorInitials; orig != "" {
		id, err := s.deps.TeamDir.UserIDByInitials(ctx, orig)
		if err != nil {
			log.Warn("originating solicitor initials unresolved, falling back to responsible attorney",
				"initials", orig, "error", err)
		} else {
			originatingID = id
		}
	} else {
		log.Warn("no originating solicitor on form, falling back to responsible attorney")
	}

	practiceAreaID, err := s.deps.PracticeAreas(form.MatterDetails.PracticeArea)
	if err != nil {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "resolve_practice_area", err)
	}

	riskResult := ""
	if ref != "" {
		result, ok, err := s.deps.Risk.ResultByReference(ctx, ref)
		switch {
		case err != nil:
			log.Warn("risk assessment lookup failed, proceeding without result",
				"instruction_ref", ref, "error", err)
		case ok:
			riskResult = result
		}
	}

	payload := registry.MatterPayload{
		Client:              registry.Ref{ID: clientID},
		Description:         form.MatterDetails.Description,
		PracticeArea:        registry.Ref{ID: practiceAreaID},
		ResponsibleAttorney: registry.Ref{ID: responsibleID},
		OriginatingAttorney: registry.Ref{ID: originatingID},
		Status:              matterStatus(form.MatterDetails.Stage),
		RiskResult:          riskResult,
		ClientReference:     ref,
		CustomFieldValues:   buildMatterFields(form),
	}

	matter, _, err := s.deps.Matters.CreateMatter(ctx, token, payload)
	if err != nil {
		return nil, s.fail(ctx, "open_matter", req.Initials, ref, "create_matter", err)
	}

	log.Info("matter created",
		"matter_id", matter.ID,
		"display_number", matter.DisplayNumber,
		"client_id", clientID,
		"practice_area_id", practiceAreaID)

	s.archiveSubmission(ctx, ref, req)
	s.publishMatterOpened(ctx, req, matter, clientName)
	s.tSucceeded(ctx, "open_matter", req.Initials, ref, time.Since(started).Milliseconds())

	return &intake.OpenMatterResponse{OK: true, Matter: *matter}, nil
}

// SyncContacts reconciles the form's client records into the registry without
// creating a matter. The company entity, when one exists, is reconciled first
// so persons can be linked to it.
func (s *Service) SyncContacts(ctx context.Context, req intake.SyncContactsRequest) (*intake.SyncContactsResponse, error) {
	form := req.FormData
	ref := form.MatterDetails.InstructionRef
	started := time.Now()
	s.tStarted(ctx, "sync_contacts", req.Initials, ref)

	if len(form.ClientInformation) == 0 {
		return nil, s.fail(ctx, "sync_contacts", req.Initials, ref, "validate",
			apperr.Validation("client_information must contain at least one record"))
	}

	token, err := s.deps.Credentials.Authenticate(ctx, req.Initials)
	if err != nil {
		return nil, s.fail(ctx, "sync_contacts", req.Initials, ref, "authenticate", err)
	}

	fields := s.deps.Fields.Load(ctx, token)
	entities := mapper.MapAll(form.ClientInformation, ref)
	if len(entities) == 0 {
		return nil, s.fail(ctx, "sync_contacts", req.Initials, ref, "map",
			apperr.Validation("no client record carries a personal name or company details"))
	}

	var companyID int64
	results := make([]intake.ReconcileOutcome, 0, len(entities))
	for _, entity := range entities {
		payload := entity.Payload
		if !entity.IsCompany && companyID != 0 {
			payload.Company = &registry.Ref{ID: companyID}
		}
		res, err := s.deps.Reconciler.CreateOrUpdate(ctx, token, payload, fields)
		if err != nil {
			return nil, s.fail(ctx, "sync_contacts", req.Initials, ref, "reconcile", err)
		}
		if entity.IsCompany {
			companyID = res.RegistryID
		}
		results = append(results, intake.ReconcileOutcome{
			RegistryID:      res.RegistryID,
			EntityType:      res.EntityType,
			EmptyFieldCount: res.EmptyFieldCount,
		})
	}

	s.tSucceeded(ctx, "sync_contacts", req.Initials, ref, time.Since(started).Milliseconds())
	return &intake.SyncContactsResponse{OK: true, Results: results}, nil
}

// resolveMatterClient decides which registry contact the matter attaches to.
// Identifiers from a prior contact sync take precedence: the company id when
// the client is an organisation, the first contact id otherwise. Without
// prior ids the first mapped entity is reconciled on the spot.
func (s *Service) resolveMatterClient(ctx context.Context, token string, req intake.OpenMatterRequest, entities []mapper.Entity, fields fieldmap.FieldMap) (int64, string, error) {
	if len(entities) == 0 {
		return 0, "", apperr.Validation("no client record carries a personal name or company details")
	}
	name := displayName(entities[0].Payload)

	if entities[0].IsCompany && req.CompanyID != nil {
		return *req.CompanyID, name, nil
	}
	if len(req.ContactIDs) > 0 {
		return req.ContactIDs[0], name, nil
	}

	res, err := s.deps.Reconciler.CreateOrUpdate(ctx, token, entities[0].Payload, fields)
	if err != nil {
		return 0, "", err
	}
	return res.RegistryID, name, nil
}

// buildMatterFields assembles the matter-level custom fields. The supervising
// partner and instruction reference are always written; folder structure and
// dispute value only when the form's value maps to a known registry option.
func buildMatterFields(form intake.IntakeForm) []registry.CustomFieldValue {
	fields := []registry.CustomFieldValue{
		{Value: form.TeamAssignments.SupervisingPartner, CustomField: registry.CustomFieldRef{ID: mapper.FieldSupervisingPartner}},
	}
	if option, ok := mapper.FolderStructureOptions[form.MatterDetails.FolderStructure]; ok {
		fields = append(fields, registry.CustomFieldValue{
			Value:       option,
			CustomField: registry.CustomFieldRef{ID: mapper.FieldFolderStructure},
		})
	}
	if option, ok := mapper.DisputeValueOptions[form.MatterDetails.DisputeValue]; ok {
		fields = append(fields, registry.CustomFieldValue{
			Value:       option,
			CustomField: registry.CustomFieldRef{ID: mapper.FieldDisputeValueBracket},
		})
	}
	return append(fields, registry.CustomFieldValue{
		Value:       form.MatterDetails.InstructionRef,
		CustomField: registry.CustomFieldRef{ID: mapper.FieldMatterInstructionRef},
	})
}

func matterStatus(stage string) string {
	if stage == "" {
		return defaultMatterStatus
	}
	return stage
}

func displayName(p registry.ContactPayload) string {
	if p.Name != "" {
		return p.Name
	}
	if p.FirstName != "" || p.LastName != "" {
		if p.FirstName == "" {
			return p.LastName
		}
		if p.LastName == "" {
			return p.FirstName
		}
		return p.FirstName + " " + p.LastName
	}
	return ""
}

func (s *Service) archiveSubmission(ctx context.Context, instructionRef string, req intake.OpenMatterRequest) {
	if s.deps.Archiver == nil {
		return
	}
	if err := s.deps.Archiver.ArchiveSubmission(ctx, instructionRef, req); err != nil {
		s.log.WithContext(ctx).Warn("intake submission archive failed",
			"instruction_ref", instructionRef, "error", err)
	}
}

func (s *Service) publishMatterOpened(ctx context.Context, req intake.OpenMatterRequest, matter *registry.Matter, clientName string) {
	if s.deps.Bus == nil {
		return
	}

	event := events.MatterOpened{
		BaseEvent:      events.NewBaseEvent(),
		Tenant:         req.Initials,
		InstructionRef: req.FormData.MatterDetails.InstructionRef,
		MatterID:       matter.ID,
		DisplayNumber:  matter.DisplayNumber,
		ClientName:     clientName,
		PracticeArea:   req.FormData.MatterDetails.PracticeArea,
		Description:    req.FormData.MatterDetails.Description,
	}
	if summary := req.FormData.InstructionSummary; summary != nil {
		event.ComplianceStatus = summary.ComplianceStatus
		event.VerificationStatus = summary.VerificationStatus
		event.PaymentStatus = summary.PaymentStatus
		event.RiskStatus = summary.RiskStatus
		event.Documents = summary.Documents
	}
	if email, err := s.deps.TeamDir.EmailByInitials(ctx, req.Initials); err == nil {
		event.RecipientEmail = email
	} else {
		s.log.WithContext(ctx).Warn("no notification recipient for initials",
			"initials", req.Initials, "error", err)
	}

	s.deps.Bus.Publish(ctx, event)
}

func (s *Service) tStarted(ctx context.Context, op, tenant, ref string) {
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.Started(ctx, op, tenant, ref)
	}
}

func (s *Service) tSucceeded(ctx context.Context, op, tenant, ref string, elapsedMs int64) {
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.Succeeded(ctx, op, tenant, ref, elapsedMs)
	}
}

func (s *Service) fail(ctx context.Context, op, tenant, ref, stage string, err error) error {
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.Failed(ctx, op, tenant, ref, stage, err)
	}
	return err
}
