package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForTaxonomy(t *testing.T) {
	cases := map[error]int{
		errorz.NotFound:          http.StatusNotFound,
		errorz.Conflict:          http.StatusConflict,
		errorz.AlreadyRegistered: http.StatusConflict,
		errorz.AlreadyRated:      http.StatusConflict,
		errorz.AlreadyInvited:    http.StatusConflict,
		errorz.AtCapacity:        http.StatusConflict,
		errorz.CapacityExceeded:  http.StatusBadRequest,
		errorz.Invalid:           http.StatusBadRequest,
		errorz.Forbidden:         http.StatusForbidden,
		errorz.NotEligible:       http.StatusForbidden,
		errorz.Expired:           http.StatusGone,
		errors.New("boom"):       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

type stubNotifyService struct {
	notifications []entity.Notification
	unread        int
	err           error
}

func (s *stubNotifyService) ListForUser(context.Context, string, bool) ([]entity.Notification, int, error) {
	return s.notifications, s.unread, s.err
}

func (s *stubNotifyService) MarkRead(context.Context, string) error { return s.err }

func (s *stubNotifyService) Delete(context.Context, string) error { return s.err }

func notificationRouter(stub *stubNotifyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNotificationHandler(stub)
	r.GET("/api/notifications", h.List)
	r.PUT("/api/notifications/:id/read", h.MarkRead)
	return r
}

func TestNotificationListRequiresUserID(t *testing.T) {
	r := notificationRouter(&stubNotifyService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationList(t *testing.T) {
	stub := &stubNotifyService{
		notifications: []entity.Notification{{ID: "n1", Title: "⭐ Rate the Function"}},
		unread:        1,
	}
	r := notificationRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications?user_id=u1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)
	assert.Contains(t, w.Body.String(), "Rate the Function")
}

func TestNotificationMarkReadMapsNotFound(t *testing.T) {
	r := notificationRouter(&stubNotifyService{err: errorz.NotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/n1/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
