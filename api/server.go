package api

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/event"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/session"
	"github.com/katatrina/eduhub-BE/internal/storage"
	"github.com/katatrina/eduhub-BE/internal/token"
	"github.com/katatrina/eduhub-BE/internal/util"
	"github.com/katatrina/eduhub-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

// InboxReader lists a user's in-app inbox documents.
type InboxReader interface {
	List(ctx context.Context, recipientID string, limit int) ([]notification.InboxItem, error)
}

type Server struct {
	router          *gin.Engine
	dbStore         db.Store
	fileStore       storage.FileStore
	tokenMaker      token.Maker
	config          *util.Config
	taskDistributor worker.TaskDistributor
	taskInspector   worker.TaskInspector
	eventSender     event.EventSender
	sessions        session.Registry
	inbox           InboxReader
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(store db.Store, config *util.Config, taskDistributor worker.TaskDistributor, taskInspector worker.TaskInspector, eventSender event.EventSender, sessions session.Registry, inbox InboxReader) (*Server, error) {
	// Create a new JWT token maker
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	// Create a new Cloudinary instance for notification attachments
	var fileStore storage.FileStore
	if config.CloudinaryURL != "" {
		fileStore, err = storage.NewCloudinaryStore(config.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloudinary store: %w", err)
		}
		log.Info().Msg("Cloudinary store created successfully ✅")
	}

	server := &Server{
		dbStore:         store,
		tokenMaker:      tokenMaker,
		config:          config,
		fileStore:       fileStore,
		taskDistributor: taskDistributor,
		taskInspector:   taskInspector,
		eventSender:     eventSender,
		sessions:        sessions,
		inbox:           inbox,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/v1")

	v1.POST("/tokens/verify", server.verifyAccessToken)

	authorized := v1.Group("/").Use(authMiddleware(server.tokenMaker))

	authorized.POST("/notifications", server.createNotification)
	authorized.GET("/notifications/:id", server.getNotification)
	authorized.POST("/notifications/:id/cancel", server.cancelNotification)
	authorized.POST("/notifications/attachments", server.uploadAttachment)
	authorized.DELETE("/notifications/attachments/:id", server.deleteAttachment)

	authorized.GET("/users/me/notifications", server.listMyNotifications)
	authorized.GET("/users/me/preferences", server.getMyPreferences)
	authorized.PUT("/users/me/preferences", server.updateMyPreferences)
	authorized.POST("/users/me/devices", server.registerDevice)
	authorized.DELETE("/users/me/devices/:token", server.revokeDevice)

	authorized.GET("/events/stream", server.streamNotificationEvents)

	server.router = router
	return router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}
