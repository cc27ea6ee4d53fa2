package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"matter_intake_backend/internal/events"
	"matter_intake_backend/platform/logger"
)

func matterOpenedEvent() events.MatterOpened {
	return events.MatterOpened{
		BaseEvent:          events.NewBaseEvent(),
		Tenant:             "AB",
		InstructionRef:     "HLX-100-0001",
		MatterID:           7700,
		DisplayNumber:      "00123-Lovelace",
		ClientName:         "Ada Lovelace",
		PracticeArea:       "Commercial",
		Description:        "Shareholder dispute",
		ComplianceStatus:   "Complete",
		VerificationStatus: "Passed",
		Documents:          []string{"passport.pdf", "engagement-letter.pdf"},
		RecipientEmail:     "ab@firm.example",
	}
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(matterOpenedEvent(), "automation@firm.example", []string{"records@firm.example"})
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}

	if msg.To != "ab@firm.example" || msg.From != "automation@firm.example" {
		t.Fatalf("addressing = %q -> %q", msg.From, msg.To)
	}
	if msg.Subject != "Matter 00123-Lovelace opened for Ada Lovelace" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"00123-Lovelace", "HLX-100-0001", "Commercial", "Ada Lovelace", "passport.pdf"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("rendered HTML missing %q", want)
		}
	}
	if len(msg.CC) != 1 || msg.CC[0] != "records@firm.example" {
		t.Fatalf("cc = %v", msg.CC)
	}
}

func TestBuildMessageSubjectWithoutClientName(t *testing.T) {
	event := matterOpenedEvent()
	event.ClientName = ""

	msg, err := BuildMessage(event, "automation@firm.example", nil)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if msg.Subject != "Matter 00123-Lovelace opened" {
		t.Fatalf("subject = %q", msg.Subject)
	}
}

func TestEndpointDispatcher(t *testing.T) {
	var got endpointEnvelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewEndpointDispatcher(srv.URL)
	err := d.Dispatch(context.Background(), Message{
		To:      "ab@firm.example",
		From:    "automation@firm.example",
		Subject: "Matter opened",
		HTML:    "<p>hi</p>",
		CC:      []string{"records@firm.example"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got.UserEmail != "ab@firm.example" || got.FromEmail != "automation@firm.example" {
		t.Fatalf("envelope = %+v", got)
	}
	if got.EmailContents != "<p>hi</p>" {
		t.Fatalf("contents = %q", got.EmailContents)
	}
}

func TestEndpointDispatcherErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream mailer unavailable"))
	}))
	defer srv.Close()

	err := NewEndpointDispatcher(srv.URL).Dispatch(context.Background(), Message{To: "x@example.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream mailer unavailable") {
		t.Fatalf("error = %q", err)
	}
}

type failingDispatcher struct{ calls int }

func (d *failingDispatcher) Dispatch(context.Context, Message) error {
	d.calls++
	return errors.New("smtp down")
}

type recordingEnqueuer struct {
	err   error
	calls int
}

func (e *recordingEnqueuer) EnqueueMatterNotification(context.Context, events.MatterOpened) error {
	e.calls++
	return e.err
}

type testNotifyConfig struct{}

func (testNotifyConfig) GetNotifyEndpointURL() string { return "" }
func (testNotifyConfig) GetNotifyFromEmail() string   { return "automation@firm.example" }
func (testNotifyConfig) GetNotifyCCEmails() []string  { return nil }
func (testNotifyConfig) GetSMTPHost() string          { return "" }
func (testNotifyConfig) GetSMTPPort() int             { return 587 }
func (testNotifyConfig) GetSMTPUsername() string      { return "" }
func (testNotifyConfig) GetSMTPPassword() string      { return "" }

func TestModuleDispatchFailureIsSwallowed(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	m := NewModule(testNotifyConfig{}, bus, nil, log)

	dispatcher := &failingDispatcher{}
	m.dispatcher = dispatcher

	if err := bus.PublishSync(context.Background(), matterOpenedEvent()); err != nil {
		t.Fatalf("publish returned error despite swallowed dispatch failure: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("dispatcher calls = %d", dispatcher.calls)
	}
}

func TestModulePrefersEnqueuer(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	enq := &recordingEnqueuer{}
	m := NewModule(testNotifyConfig{}, bus, enq, log)

	dispatcher := &failingDispatcher{}
	m.dispatcher = dispatcher

	if err := bus.PublishSync(context.Background(), matterOpenedEvent()); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if enq.calls != 1 {
		t.Fatalf("enqueuer calls = %d", enq.calls)
	}
	if dispatcher.calls != 0 {
		t.Fatal("dispatched inline despite enqueuer")
	}
}

func TestModuleFallsBackInlineWhenEnqueueFails(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	enq := &recordingEnqueuer{err: errors.New("redis gone")}
	m := NewModule(testNotifyConfig{}, bus, enq, log)

	dispatcher := &failingDispatcher{}
	m.dispatcher = dispatcher

	if err := bus.PublishSync(context.Background(), matterOpenedEvent()); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("dispatcher calls = %d, want inline fallback", dispatcher.calls)
	}
}

func TestModuleSkipsWithoutRecipient(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	m := NewModule(testNotifyConfig{}, bus, nil, log)

	dispatcher := &failingDispatcher{}
	m.dispatcher = dispatcher

	event := matterOpenedEvent()
	event.RecipientEmail = ""
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if dispatcher.calls != 0 {
		t.Fatal("dispatched without recipient")
	}
}
