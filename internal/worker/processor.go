package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/eduhub-BE/internal/dispatch"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

/*
 This file contains code that will pick up the tasks from the Redis queue and process them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// QueueForPriority routes urgent and high priority notifications to the
// critical queue so they are picked up ahead of bulk traffic.
func QueueForPriority(priority notification.Priority) string {
	switch priority {
	case notification.PriorityUrgent, notification.PriorityHigh:
		return QueueCritical
	default:
		return QueueDefault
	}
}

type RedisTaskProcessor struct {
	server *asynq.Server
	engine *dispatch.Engine
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, engine *dispatch.Engine) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return &RedisTaskProcessor{
		server: server,
		engine: engine,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskDispatchNotification, processor.ProcessTaskDispatchNotification)

	return processor.server.Start(mux)
}

// Shutdown stops the asynq server, waiting for in-flight tasks to finish.
func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
