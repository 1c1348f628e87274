package http

import (
	"context"
	"net/http"

	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/gin-gonic/gin"
)

type notifyService interface {
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type NotificationHandler struct {
	notify notifyService
}

func NewNotificationHandler(notify notifyService) *NotificationHandler {
	return &NotificationHandler{notify: notify}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	unreadOnly := c.Query("unread_only") == "true"

	notifications, unread, err := h.notify.ListForUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notify.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notify.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
