package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"matter_intake_backend/internal/intake/fieldmap"
	"matter_intake_backend/internal/intake/mapper"
	"matter_intake_backend/internal/intake/reconcile"
	intake "matter_intake_backend/internal/intake/transport"
	"matter_intake_backend/internal/refdata/practicearea"
	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/apperr"
	"matter_intake_backend/platform/logger"
)

type stubCreds struct {
	err   error
	calls int
}

func (s *stubCreds) Authenticate(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "tok", nil
}

type stubMatters struct {
	err     error
	calls   int
	payload registry.MatterPayload
}

func (s *stubMatters) CreateMatter(_ context.Context, _ string, payload registry.MatterPayload) (*registry.Matter, json.RawMessage, error) {
	s.calls++
	s.payload = payload
	if s.err != nil {
		return nil, nil, s.err
	}
	return &registry.Matter{ID: 7700, DisplayNumber: "00123-Lovelace", Status: payload.Status}, nil, nil
}

type stubFields struct{}

func (stubFields) Load(context.Context, string) fieldmap.FieldMap { return fieldmap.Empty() }

type stubReconciler struct {
	err      error
	nextID   int64
	payloads []registry.ContactPayload
}

func (s *stubReconciler) CreateOrUpdate(_ context.Context, _ string, payload registry.ContactPayload, _ fieldmap.FieldMap) (reconcile.Result, error) {
	if s.err != nil {
		return reconcile.Result{}, s.err
	}
	s.nextID++
	s.payloads = append(s.payloads, payload)
	return reconcile.Result{RegistryID: 9000 + s.nextID, EntityType: payload.Type}, nil
}

type stubTeamDir struct {
	users  map[string]int64
	emails map[string]string
}

func (s *stubTeamDir) UserIDByInitials(_ context.Context, initials string) (int64, error) {
	id, ok := s.users[initials]
	if !ok {
		return 0, errors.New("unknown initials")
	}
	return id, nil
}

func (s *stubTeamDir) EmailByInitials(_ context.Context, initials string) (string, error) {
	email, ok := s.emails[initials]
	if !ok {
		return "", errors.New("unknown initials")
	}
	return email, nil
}

type stubRisk struct {
	result string
	ok     bool
	err    error
}

func (s *stubRisk) ResultByReference(context.Context, string) (string, bool, error) {
	return s.result, s.ok, s.err
}

type recordingTelemetry struct {
	started   int
	succeeded int
	failed    int
	lastStage string
}

func (t *recordingTelemetry) Started(context.Context, string, string, string) { t.started++ }
func (t *recordingTelemetry) Succeeded(context.Context, string, string, string, int64) {
	t.succeeded++
}
func (t *recordingTelemetry) Failed(_ context.Context, _, _, _, stage string, _ error) {
	t.failed++
	t.lastStage = stage
}

type failingArchiver struct{ calls int }

func (a *failingArchiver) ArchiveSubmission(context.Context, string, any) error {
	a.calls++
	return errors.New("bucket unavailable")
}

type testEnv struct {
	creds      *stubCreds
	matters    *stubMatters
	reconciler *stubReconciler
	teamDir    *stubTeamDir
	risk       *stubRisk
	telemetry  *recordingTelemetry
	svc        *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		creds:      &stubCreds{},
		matters:    &stubMatters{},
		reconciler: &stubReconciler{},
		teamDir: &stubTeamDir{
			users:  map[string]int64{"AB": 500, "CD": 501},
			emails: map[string]string{"AB": "ab@firm.example"},
		},
		risk:      &stubRisk{},
		telemetry: &recordingTelemetry{},
	}
	env.svc = New(Deps{
		Credentials:   env.creds,
		Matters:       env.matters,
		Fields:        stubFields{},
		Reconciler:    env.reconciler,
		TeamDir:       env.teamDir,
		Risk:          env.risk,
		PracticeAreas: practicearea.Resolve,
		Telemetry:     env.telemetry,
		Logger:        logger.New("test"),
	})
	return env
}

func openMatterRequest() intake.OpenMatterRequest {
	return intake.OpenMatterRequest{
		Initials: "AB",
		FormData: intake.IntakeForm{
			ClientInformation: []intake.ClientRecord{
				{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
			},
			MatterDetails: intake.MatterDetails{
				Description:    "Shareholder dispute",
				PracticeArea:   "Commercial",
				InstructionRef: "HLX-100-0001",
			},
			TeamAssignments: intake.TeamAssignments{
				SupervisingPartner: "EF",
			},
		},
	}
}

func matterField(payload registry.MatterPayload, id int64) (string, bool) {
	for _, f := range payload.CustomFieldValues {
		if f.CustomField.ID == id {
			return f.Value, true
		}
	}
	return "", false
}

func TestOpenMatter(t *testing.T) {
	env := newTestEnv()

	resp, err := env.svc.OpenMatter(context.Background(), openMatterRequest())
	if err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if !resp.OK || resp.Matter.ID != 7700 {
		t.Fatalf("resp = %+v", resp)
	}

	p := env.matters.payload
	if p.Client.ID != 9001 {
		t.Fatalf("client id = %d, want reconciled 9001", p.Client.ID)
	}
	if p.ResponsibleAttorney.ID != 500 || p.OriginatingAttorney.ID != 500 {
		t.Fatalf("attorneys = %d/%d, want 500/500", p.ResponsibleAttorney.ID, p.OriginatingAttorney.ID)
	}
	if p.PracticeArea.ID == 0 {
		t.Fatal("practice area not resolved")
	}
	if p.Status != "Open" {
		t.Fatalf("status = %q, want Open default", p.Status)
	}
	if p.ClientReference != "HLX-100-0001" {
		t.Fatalf("client reference = %q", p.ClientReference)
	}
	if v, ok := matterField(p, mapper.FieldMatterInstructionRef); !ok || v != "HLX-100-0001" {
		t.Fatalf("instruction ref field = %q, %v", v, ok)
	}
	if v, ok := matterField(p, mapper.FieldSupervisingPartner); !ok || v != "EF" {
		t.Fatalf("supervising partner field = %q, %v", v, ok)
	}

	if env.telemetry.started != 1 || env.telemetry.succeeded != 1 || env.telemetry.failed != 0 {
		t.Fatalf("telemetry = %+v", env.telemetry)
	}
}

func TestOpenMatterOriginatingFallback(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.FormData.TeamAssignments.OriginatingSolicitorInitials = "ZZ"

	if _, err := env.svc.OpenMatter(context.Background(), req); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.OriginatingAttorney.ID != 500 {
		t.Fatalf("originating = %d, want fallback to responsible 500",
			env.matters.payload.OriginatingAttorney.ID)
	}
}

func TestOpenMatterOriginatingResolved(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.FormData.TeamAssignments.OriginatingSolicitorInitials = "CD"

	if _, err := env.svc.OpenMatter(context.Background(), req); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.OriginatingAttorney.ID != 501 {
		t.Fatalf("originating = %d, want 501", env.matters.payload.OriginatingAttorney.ID)
	}
}

func TestOpenMatterUnknownPracticeAreaFailsBeforeCreate(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.FormData.MatterDetails.PracticeArea = "Interplanetary Law"

	_, err := env.svc.OpenMatter(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindReferenceResolution) {
		t.Fatalf("kind = %v, want reference resolution", apperr.GetKind(err))
	}
	if env.matters.calls != 0 {
		t.Fatalf("CreateMatter called %d times before resolution", env.matters.calls)
	}
	if env.telemetry.failed != 1 || env.telemetry.lastStage != "resolve_practice_area" {
		t.Fatalf("telemetry = %+v", env.telemetry)
	}
}

func TestOpenMatterUnknownResponsibleInitials(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.Initials = "XX"

	_, err := env.svc.OpenMatter(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindReferenceResolution) {
		t.Fatalf("kind = %v", apperr.GetKind(err))
	}
	if env.matters.calls != 0 {
		t.Fatal("matter created despite unknown responsible initials")
	}
}

func TestOpenMatterPrefersPriorContactIDs(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.ContactIDs = []int64{12345}

	if _, err := env.svc.OpenMatter(context.Background(), req); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.Client.ID != 12345 {
		t.Fatalf("client id = %d, want prior contact 12345", env.matters.payload.Client.ID)
	}
	if len(env.reconciler.payloads) != 0 {
		t.Fatal("reconciliation ran despite prior contact ids")
	}
}

func TestOpenMatterPrefersCompanyIDForCompanyClient(t *testing.T) {
	env := newTestEnv()
	companyID := int64(5555)
	req := openMatterRequest()
	req.CompanyID = &companyID
	req.ContactIDs = []int64{12345}
	req.FormData.ClientInformation = []intake.ClientRecord{
		{
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"company_details": map[string]any{
				"name": "Analytical Engines Ltd",
			},
		},
	}

	if _, err := env.svc.OpenMatter(context.Background(), req); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.Client.ID != 5555 {
		t.Fatalf("client id = %d, want company 5555", env.matters.payload.Client.ID)
	}
}

func TestOpenMatterIncludesRiskResult(t *testing.T) {
	env := newTestEnv()
	env.risk.result = "Low Risk"
	env.risk.ok = true

	if _, err := env.svc.OpenMatter(context.Background(), openMatterRequest()); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.RiskResult != "Low Risk" {
		t.Fatalf("risk result = %q", env.matters.payload.RiskResult)
	}
}

func TestOpenMatterRiskLookupFailureIsSoft(t *testing.T) {
	env := newTestEnv()
	env.risk.err = errors.New("db down")

	if _, err := env.svc.OpenMatter(context.Background(), openMatterRequest()); err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if env.matters.payload.RiskResult != "" {
		t.Fatalf("risk result = %q, want empty", env.matters.payload.RiskResult)
	}
}

func TestOpenMatterArchiveFailureIsSoft(t *testing.T) {
	env := newTestEnv()
	archiver := &failingArchiver{}
	env.svc.deps.Archiver = archiver

	resp, err := env.svc.OpenMatter(context.Background(), openMatterRequest())
	if err != nil {
		t.Fatalf("OpenMatter: %v", err)
	}
	if !resp.OK {
		t.Fatal("operation failed on archive error")
	}
	if archiver.calls != 1 {
		t.Fatalf("archiver calls = %d", archiver.calls)
	}
}

func TestOpenMatterRegistryFailure(t *testing.T) {
	env := newTestEnv()
	env.matters.err = apperr.Registry("registry returned 422")

	_, err := env.svc.OpenMatter(context.Background(), openMatterRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if env.telemetry.lastStage != "create_matter" {
		t.Fatalf("failure stage = %q", env.telemetry.lastStage)
	}
}

func TestOpenMatterValidation(t *testing.T) {
	env := newTestEnv()
	req := openMatterRequest()
	req.FormData.ClientInformation = nil

	_, err := env.svc.OpenMatter(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
	if env.creds.calls != 0 {
		t.Fatal("authenticated before validation")
	}
}

func TestSyncContactsCompanyFirstAndLinked(t *testing.T) {
	env := newTestEnv()
	req := intake.SyncContactsRequest{
		Initials: "AB",
		FormData: intake.IntakeForm{
			ClientInformation: []intake.ClientRecord{
				{"first_name": "Ada", "last_name": "Lovelace"},
				{
					"first_name": "Charles",
					"last_name":  "Babbage",
					"company_details": map[string]any{
						"name": "Analytical Engines Ltd",
					},
				},
			},
			MatterDetails: intake.MatterDetails{InstructionRef: "HLX-100-0001"},
		},
	}

	resp, err := env.svc.SyncContacts(context.Background(), req)
	if err != nil {
		t.Fatalf("SyncContacts: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want company + 2 persons", len(resp.Results))
	}
	if resp.Results[0].EntityType != "Company" {
		t.Fatalf("first result = %q, want Company", resp.Results[0].EntityType)
	}

	companyID := resp.Results[0].RegistryID
	for _, p := range env.reconciler.payloads[1:] {
		if p.Company == nil || p.Company.ID != companyID {
			t.Fatalf("person not linked to company: %+v", p.Company)
		}
	}
}

func TestSyncContactsNoUsableRecords(t *testing.T) {
	env := newTestEnv()
	req := intake.SyncContactsRequest{
		Initials: "AB",
		FormData: intake.IntakeForm{
			ClientInformation: []intake.ClientRecord{{"notes": "nothing"}},
		},
	}

	_, err := env.svc.SyncContacts(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestSyncContactsAuthFailure(t *testing.T) {
	env := newTestEnv()
	env.creds.err = apperr.Auth("no credentials for tenant")

	_, err := env.svc.SyncContacts(context.Background(), intake.SyncContactsRequest{
		Initials: "AB",
		FormData: intake.IntakeForm{
			ClientInformation: []intake.ClientRecord{{"first_name": "Ada"}},
		},
	})
	if !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("kind = %v, want auth", apperr.GetKind(err))
	}
}
