package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/stretchr/testify/require"
)

func TestRegisterDevice(t *testing.T) {
	registerRequest := func(t *testing.T, server *Server, body gin.H) *httptest.ResponseRecorder {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/v1/users/me/devices", bytes.NewReader(payload))
		request.Header.Set("Authorization", bearerToken(t))
		server.router.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("registers the device", func(t *testing.T) {
		store := newStubStore()
		server := newTestServer(t, store, &stubDistributor{}, &stubInspector{})

		recorder := registerRequest(t, server, gin.H{"token": "tok_1", "platform": "ios"})

		require.Equal(t, http.StatusNoContent, recorder.Code)
		require.Len(t, store.registered, 1)
		require.Equal(t, "u1", store.registered[0].UserID)
		require.Equal(t, notification.PlatformIOS, store.registered[0].Platform)
	})

	t.Run("unknown platform", func(t *testing.T) {
		store := newStubStore()
		server := newTestServer(t, store, &stubDistributor{}, &stubInspector{})

		recorder := registerRequest(t, server, gin.H{"token": "tok_1", "platform": "blackberry"})

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		require.Empty(t, store.registered)
	})

	t.Run("token owned by another account", func(t *testing.T) {
		store := newStubStore()
		store.registerDeviceErr = &pgconn.PgError{
			Code:           db.UniqueViolationCode,
			ConstraintName: "push_devices_token_key",
		}
		server := newTestServer(t, store, &stubDistributor{}, &stubInspector{})

		recorder := registerRequest(t, server, gin.H{"token": "tok_1", "platform": "web"})

		require.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestUpdateMyPreferencesValidation(t *testing.T) {
	store := newStubStore()
	server := newTestServer(t, store, &stubDistributor{}, &stubInspector{})

	body, err := json.Marshal(gin.H{
		"channels":       gin.H{"inApp": true},
		"emailFrequency": "hourly",
	})
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/v1/users/me/preferences", bytes.NewReader(body))
	request.Header.Set("Authorization", bearerToken(t))
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
