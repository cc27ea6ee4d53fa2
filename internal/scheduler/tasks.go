package scheduler

import (
	"encoding/json"

	"matter_intake_backend/internal/events"

	"github.com/hibiken/asynq"
)

const TaskMatterNotification = "intake.matter_notification"

// NewMatterNotificationTask wraps a matter-opened event for queued delivery.
func NewMatterNotificationTask(event events.MatterOpened) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatterNotification, data), nil
}

// ParseMatterNotificationPayload decodes a queued matter-opened event.
func ParseMatterNotificationPayload(task *asynq.Task) (events.MatterOpened, error) {
	var event events.MatterOpened
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return events.MatterOpened{}, err
	}
	return event, nil
}
