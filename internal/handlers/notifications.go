package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// NotificationHandler serves the read side of the notification sink.
type NotificationHandler struct {
	Notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

// GetNotifications returns the authenticated user's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	notifications, err := h.Notifications.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Notifications fetched successfully", notifications)
}

// GetUnreadCount returns how many notifications the user has not read yet.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.Notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Unread count fetched successfully", gin.H{"count": count})
}

// MarkNotificationAsRead flags one of the user's notifications as read.
func (h *NotificationHandler) MarkNotificationAsRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Notification marked as read", nil)
}

// MarkAllNotificationsAsRead flags all of the user's notifications as read.
func (h *NotificationHandler) MarkAllNotificationsAsRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}
