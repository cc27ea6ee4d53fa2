package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"matter_intake_backend/internal/events"
)

//go:embed templates/*.html
var templateFS embed.FS

type matterOpenedData struct {
	Subject            string
	ClientName         string
	DisplayNumber      string
	InstructionRef     string
	PracticeArea       string
	Description        string
	ComplianceStatus   string
	VerificationStatus string
	PaymentStatus      string
	RiskStatus         string
	Documents          []string
}

func (d matterOpenedData) HasStatuses() bool {
	return d.ComplianceStatus != "" || d.VerificationStatus != "" ||
		d.PaymentStatus != "" || d.RiskStatus != ""
}

// BuildMessage renders the matter-opened confirmation for an event. The
// recipient comes from the event; sender and copy lists come from config.
func BuildMessage(event events.MatterOpened, from string, cc []string) (Message, error) {
	subject := fmt.Sprintf("Matter %s opened", event.DisplayNumber)
	if event.ClientName != "" {
		subject = fmt.Sprintf("Matter %s opened for %s", event.DisplayNumber, event.ClientName)
	}

	html, err := renderTemplate("matter_opened.html", matterOpenedData{
		Subject:            subject,
		ClientName:         event.ClientName,
		DisplayNumber:      event.DisplayNumber,
		InstructionRef:     event.InstructionRef,
		PracticeArea:       event.PracticeArea,
		Description:        event.Description,
		ComplianceStatus:   event.ComplianceStatus,
		VerificationStatus: event.VerificationStatus,
		PaymentStatus:      event.PaymentStatus,
		RiskStatus:         event.RiskStatus,
		Documents:          event.Documents,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      event.RecipientEmail,
		From:    from,
		Subject: subject,
		HTML:    html,
		CC:      cc,
	}, nil
}

func renderTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
