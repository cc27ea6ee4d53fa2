package notification

import (
	"context"

	"matter_intake_backend/internal/events"
	"matter_intake_backend/platform/config"
	"matter_intake_backend/platform/logger"
)

// Enqueuer queues a matter-opened event for delivery by the worker process.
// Satisfied by the scheduler client; kept local to avoid an import cycle.
type Enqueuer interface {
	EnqueueMatterNotification(ctx context.Context, event events.MatterOpened) error
}

// Module subscribes to matter-opened events and hands them to the delivery
// path: the task queue when one is configured, inline dispatch otherwise.
type Module struct {
	dispatcher Dispatcher
	enqueuer   Enqueuer
	fromEmail  string
	ccEmails   []string
	log        *logger.Logger
}

// NewModule creates the notification module and subscribes it to the bus.
// enqueuer may be nil, in which case delivery happens inline.
func NewModule(cfg config.NotificationConfig, bus events.Bus, enqueuer Enqueuer, log *logger.Logger) *Module {
	m := &Module{
		dispatcher: DispatcherFromConfig(cfg, log),
		enqueuer:   enqueuer,
		fromEmail:  cfg.GetNotifyFromEmail(),
		ccEmails:   cfg.GetNotifyCCEmails(),
		log:        log,
	}

	bus.Subscribe(events.MatterOpened{}.EventName(), events.HandlerFunc(m.onMatterOpened))
	return m
}

// DispatcherFromConfig picks the delivery channel: tenant endpoint first,
// direct SMTP second, no-op when neither is configured.
func DispatcherFromConfig(cfg config.NotificationConfig, log *logger.Logger) Dispatcher {
	if url := cfg.GetNotifyEndpointURL(); url != "" {
		return NewEndpointDispatcher(url)
	}
	if host := cfg.GetSMTPHost(); host != "" {
		return NewSMTPDispatcher(host, cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword())
	}
	log.Warn("no notification channel configured, matter notifications disabled")
	return NoopDispatcher{}
}

// onMatterOpened delivers the confirmation email for one matter. By the time
// this handler runs the matter already exists, so every failure here is
// logged and swallowed.
func (m *Module) onMatterOpened(ctx context.Context, event events.Event) error {
	e, ok := event.(events.MatterOpened)
	if !ok {
		return nil
	}
	if e.RecipientEmail == "" {
		m.log.Warn("matter opened without notification recipient",
			"instruction_ref", e.InstructionRef, "matter_id", e.MatterID)
		return nil
	}

	if m.enqueuer != nil {
		err := m.enqueuer.EnqueueMatterNotification(ctx, e)
		if err == nil {
			return nil
		}
		m.log.Warn("matter notification enqueue failed, dispatching inline", "error", err)
	}

	msg, err := BuildMessage(e, m.fromEmail, m.ccEmails)
	if err != nil {
		m.log.Error("matter notification render failed", "error", err)
		return nil
	}
	if err := m.dispatcher.Dispatch(ctx, msg); err != nil {
		m.log.Error("matter notification dispatch failed",
			"recipient", e.RecipientEmail, "matter_id", e.MatterID, "error", err)
		return nil
	}

	m.log.Info("matter notification delivered",
		"recipient", e.RecipientEmail, "matter_id", e.MatterID)
	return nil
}
