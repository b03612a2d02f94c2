package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotificationNotCancellable = errors.New("notification can only be cancelled while draft or scheduled")
	ErrAttachmentStoreNotReady    = errors.New("attachment storage is not configured")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
