// Package events defines the domain events published by the intake pipeline
// and re-exports the platform event bus for convenience.
package events

import (
	platformevents "matter_intake_backend/platform/events"
	"matter_intake_backend/platform/logger"
)

// Re-exports so modules can depend on internal/events alone.
type (
	Event       = platformevents.Event
	BaseEvent   = platformevents.BaseEvent
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	InMemoryBus = platformevents.InMemoryBus
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// MatterOpened is published after a matter has been created in the registry.
// Subscribers (notification) treat it as a trailing side effect: by the time
// this event exists the operation has already succeeded.
type MatterOpened struct {
	BaseEvent

	Tenant             string   `json:"tenant"`
	InstructionRef     string   `json:"instructionRef"`
	MatterID           int64    `json:"matterId"`
	DisplayNumber      string   `json:"displayNumber"`
	ClientName         string   `json:"clientName"`
	PracticeArea       string   `json:"practiceArea"`
	Description        string   `json:"description"`
	ComplianceStatus   string   `json:"complianceStatus,omitempty"`
	VerificationStatus string   `json:"verificationStatus,omitempty"`
	PaymentStatus      string   `json:"paymentStatus,omitempty"`
	RiskStatus         string   `json:"riskStatus,omitempty"`
	Documents          []string `json:"documents,omitempty"`
	RecipientEmail     string   `json:"recipientEmail,omitempty"`
}

// EventName returns the unique identifier for this event type.
func (MatterOpened) EventName() string { return "intake.matter_opened" }
