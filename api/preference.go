package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/notification"
)

// getMyPreferences returns the caller's notification preferences. A user who
// has never saved preferences gets the opt-in-to-everything defaults.
func (server *Server) getMyPreferences(c *gin.Context) {
	userID := authenticatedUserID(c)

	pref, err := server.dbStore.GetPreference(c, userID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusOK, defaultPreferences(userID))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, pref)
}

type updatePreferencesRequest struct {
	Channels       notification.ChannelPreferences `json:"channels"`
	EmailFrequency string                          `json:"emailFrequency"`
	Categories     map[notification.Category]bool  `json:"categories"`
	Types          map[notification.Type]bool      `json:"types"`
	QuietHours     notification.QuietHours         `json:"quietHours"`
}

func (server *Server) updateMyPreferences(c *gin.Context) {
	userID := authenticatedUserID(c)

	req := new(updatePreferencesRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	switch req.EmailFrequency {
	case "", notification.EmailFrequencyImmediate, notification.EmailFrequencyDaily, notification.EmailFrequencyNever:
	default:
		c.JSON(http.StatusBadRequest, errorResponse(errors.New("emailFrequency must be one of immediate, daily, never")))
		return
	}

	if req.QuietHours.Enabled {
		// Reject malformed windows now instead of failing open at dispatch time.
		if _, err := req.QuietHours.Contains(time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	pref := &notification.Preference{
		UserID:         userID,
		Channels:       req.Channels,
		EmailFrequency: req.EmailFrequency,
		Categories:     req.Categories,
		Types:          req.Types,
		QuietHours:     req.QuietHours,
	}

	if err := server.dbStore.UpsertPreference(c, pref); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, pref)
}

type registerDeviceRequest struct {
	Token    string                      `json:"token" binding:"required"`
	Platform notification.DevicePlatform `json:"platform" binding:"required"`
}

func (server *Server) registerDevice(c *gin.Context) {
	userID := authenticatedUserID(c)

	req := new(registerDeviceRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	switch req.Platform {
	case notification.PlatformWeb, notification.PlatformIOS, notification.PlatformAndroid:
	default:
		c.JSON(http.StatusBadRequest, errorResponse(errors.New("platform must be one of web, ios, android")))
		return
	}

	err := server.dbStore.RegisterDevice(c, db.RegisterDeviceParams{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	})
	if err != nil {
		if code, _ := db.ErrorDescription(err); code == db.UniqueViolationCode {
			c.JSON(http.StatusConflict, errorResponse(errors.New("device token is already registered to another account")))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (server *Server) revokeDevice(c *gin.Context) {
	userID := authenticatedUserID(c)
	deviceToken := c.Param("token")

	err := server.dbStore.RevokeDevice(c, userID, deviceToken)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(err))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func defaultPreferences(userID string) *notification.Preference {
	return &notification.Preference{
		UserID: userID,
		Channels: notification.ChannelPreferences{
			InApp:   true,
			Email:   true,
			SMS:     true,
			Push:    true,
			Webhook: true,
		},
	}
}
