// The worker process drains the asynq queue: it renders and delivers the
// matter-opened notifications the API enqueues. Run alongside the API when
// REDIS_URL is configured.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"matter_intake_backend/internal/notification"
	"matter_intake_backend/internal/scheduler"
	"matter_intake_backend/platform/config"
	"matter_intake_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.DispatcherFromConfig(cfg, log)

	worker, err := scheduler.NewWorker(cfg, cfg, dispatcher, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
