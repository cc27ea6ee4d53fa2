package scheduler

import (
	"context"
	"fmt"

	"matter_intake_backend/internal/notification"
	"matter_intake_backend/platform/config"
	"matter_intake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher notification.Dispatcher
	fromEmail  string
	ccEmails   []string
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, notifyCfg config.NotificationConfig, dispatcher notification.Dispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		fromEmail:  notifyCfg.GetNotifyFromEmail(),
		ccEmails:   notifyCfg.GetNotifyCCEmails(),
		log:        log,
	}

	mux.HandleFunc(TaskMatterNotification, w.handleMatterNotification)

	return w, nil
}

// handleMatterNotification renders and delivers one queued matter-opened
// notification. Returning an error hands the task back to asynq for retry.
func (w *Worker) handleMatterNotification(ctx context.Context, task *asynq.Task) error {
	event, err := ParseMatterNotificationPayload(task)
	if err != nil {
		return err
	}
	if event.RecipientEmail == "" {
		w.log.Warn("matter notification has no recipient, dropping",
			"instruction_ref", event.InstructionRef, "matter_id", event.MatterID)
		return nil
	}

	msg, err := notification.BuildMessage(event, w.fromEmail, w.ccEmails)
	if err != nil {
		return err
	}

	if err := w.dispatcher.Dispatch(ctx, msg); err != nil {
		return err
	}

	w.log.Info("matter notification delivered",
		"recipient", event.RecipientEmail,
		"matter_id", event.MatterID,
		"display_number", event.DisplayNumber)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
