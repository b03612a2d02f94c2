package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/util"
	"github.com/katatrina/eduhub-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

type createNotificationRequest struct {
	Recipients notification.Recipients  `json:"recipients"`
	Title      string                   `json:"title" binding:"required"`
	Message    string                   `json:"message" binding:"required"`
	Content    *notification.Content    `json:"content"`
	Type       notification.Type        `json:"type" binding:"required"`
	Category   notification.Category    `json:"category" binding:"required"`
	Priority   notification.Priority    `json:"priority"`
	Channels   notification.Channels    `json:"channels"`
	SendAt     *time.Time               `json:"sendAt"`
	Timezone   string                   `json:"timezone"`
	Recurrence *notification.Recurrence `json:"recurrence"`
}

// createNotification persists a notification and enqueues its dispatch job,
// immediately or with a delay when sendAt is in the future.
func (server *Server) createNotification(c *gin.Context) {
	req := new(createNotificationRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := req.Recipients.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	status := notification.StatusDraft
	var delay time.Duration
	if req.SendAt != nil {
		if d := time.Until(*req.SendAt); d > 0 {
			delay = d
			status = notification.StatusScheduled
		}
	}

	n, err := server.dbStore.CreateNotification(c, db.CreateNotificationParams{
		ID:         util.NewNotificationID(),
		Recipients: req.Recipients,
		Title:      req.Title,
		Message:    req.Message,
		Content:    req.Content,
		Type:       req.Type,
		Category:   req.Category,
		Priority:   priority,
		Channels:   req.Channels,
		SendAt:     req.SendAt,
		Timezone:   req.Timezone,
		Recurrence: req.Recurrence,
		Status:     status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	opts := []asynq.Option{
		asynq.Queue(worker.QueueForPriority(priority)),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	err = server.taskDistributor.DistributeTaskDispatchNotification(c, &worker.PayloadDispatchNotification{
		NotificationID: n.ID,
	}, opts...)
	if err != nil {
		// The record exists but its job was never queued; surface the error
		// so the producer retries the enqueue.
		log.Error().Err(err).Str("notificationID", n.ID).Msg("failed to enqueue dispatch task")
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, n)
}

func (server *Server) getNotification(c *gin.Context) {
	id := c.Param("id")

	n, err := server.dbStore.GetNotification(c, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(err))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, n)
}

const (
	defaultInboxLimit = 20
	maxInboxLimit     = 100
)

// listMyNotifications returns the caller's in-app inbox, most recent first.
func (server *Server) listMyNotifications(c *gin.Context) {
	userID := authenticatedUserID(c)

	limit := defaultInboxLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorResponse(errors.New("limit must be a positive integer")))
			return
		}
		limit = min(parsed, maxInboxLimit)
	}

	items, err := server.inbox.List(c, userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// cancelNotification cancels a notification that has not started dispatching
// yet. Once a job has entered sending it is no longer preemptible; callers
// get a conflict instead.
func (server *Server) cancelNotification(c *gin.Context) {
	id := c.Param("id")

	n, err := server.dbStore.GetNotification(c, id)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(err))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	if !n.Status.CanTransitionTo(notification.StatusCancelled) {
		c.JSON(http.StatusConflict, errorResponse(ErrNotificationNotCancellable))
		return
	}

	// Remove the pending task first, so the worker cannot pick the job up
	// between the status write and the delete.
	err = server.taskInspector.DeleteTask(c, worker.QueueForPriority(n.Priority), worker.DispatchTaskID(n.ID))
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	err = server.dbStore.UpdateNotificationStatus(c, db.UpdateNotificationStatusParams{
		ID:     n.ID,
		Status: notification.StatusCancelled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	n.Status = notification.StatusCancelled
	c.JSON(http.StatusOK, n)
}
