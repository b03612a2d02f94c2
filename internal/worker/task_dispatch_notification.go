package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// PayloadDispatchNotification contain all data of the task that we want to store in Redis.
// The notification document itself stays in Postgres; the task only carries
// its id, so a redelivered job always re-reads current state.
type PayloadDispatchNotification struct {
	NotificationID string `json:"notification_id"`
}

// DispatchTaskID returns the stable task id for a notification's dispatch
// job. Using the notification id makes enqueue idempotent per notification
// and lets the API cancel a scheduled job before it runs.
func DispatchTaskID(notificationID string) string {
	return fmt.Sprintf("notification:dispatch:%s", notificationID)
}

func (distributor *RedisTaskDistributor) DistributeTaskDispatchNotification(
	ctx context.Context,
	payload *PayloadDispatchNotification,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	taskID := DispatchTaskID(payload.NotificationID)
	task := asynq.NewTask(TaskDispatchNotification, jsonPayload, append(opts, asynq.TaskID(taskID))...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("task_id", taskID).
		Str("notification_id", payload.NotificationID).
		Str("queue", info.Queue).
		Int("max_retry", info.MaxRetry).
		Msg("dispatch task enqueued")

	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskDispatchNotification(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadDispatchNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	if err := processor.engine.Run(ctx, payload.NotificationID); err != nil {
		log.Error().Err(err).Str("notification_id", payload.NotificationID).
			Msg("dispatch pipeline failed")
		return err
	}

	log.Info().Str("type", task.Type()).
		Str("notification_id", payload.NotificationID).Msg("task processed")

	return nil
}
