package worker

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/rs/zerolog/log"
)

// sweepInterval controls how often the sweeper scans for overdue scheduled
// notifications.
const sweepInterval = 1 * time.Minute

// ScheduledSweeper is the at-least-once safety net for scheduled
// notifications: if a delayed task vanished from Redis (flush, data loss)
// while its notification row still says scheduled, the sweeper re-enqueues
// it once its send time has passed.
type ScheduledSweeper struct {
	store           db.Store
	taskDistributor TaskDistributor
	taskInspector   TaskInspector
	scheduler       gocron.Scheduler
}

func NewScheduledSweeper(store db.Store, taskDistributor TaskDistributor, taskInspector TaskInspector) (*ScheduledSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &ScheduledSweeper{
		store:           store,
		taskDistributor: taskDistributor,
		taskInspector:   taskInspector,
		scheduler:       scheduler,
	}, nil
}

// Start begins the periodic sweep.
func (s *ScheduledSweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(
			func() {
				s.sweep()
			},
		),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	return nil
}

// Stop shuts the sweep scheduler down.
func (s *ScheduledSweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *ScheduledSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	overdue, err := s.store.ListOverdueScheduledNotifications(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to list overdue scheduled notifications")
		return
	}

	for _, n := range overdue {
		queue := QueueForPriority(n.Priority)
		taskID := DispatchTaskID(n.ID)

		_, err = s.taskInspector.GetTaskInfo(ctx, queue, taskID)
		if err == nil {
			// Task still pending, nothing to repair.
			continue
		}
		if !errors.Is(err, asynq.ErrTaskNotFound) {
			log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to inspect dispatch task")
			continue
		}

		err = s.taskDistributor.DistributeTaskDispatchNotification(ctx, &PayloadDispatchNotification{
			NotificationID: n.ID,
		}, asynq.Queue(queue))
		if err != nil {
			log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to re-enqueue overdue notification")
			continue
		}

		log.Warn().Str("notification_id", n.ID).Msg("re-enqueued overdue scheduled notification")
	}
}
