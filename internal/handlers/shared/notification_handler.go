package handlers

import (
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/middleware"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/validators"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the caller's inbox, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	notifications, total, err := h.notificationService.ListForUser(c.Request.Context(), caller.UserID, params)
	if err != nil {
		respondServiceError(c, err, utils.CodeNotificationNotFound)
		return
	}

	utils.SuccessResponseWithMeta(c, "Notifications retrieved successfully", notifications, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, utils.CodeNotificationNotFound)
		return
	}

	utils.SuccessResponse(c, "Unread count retrieved successfully", gin.H{"unread_count": count})
}

// MarkAllRead clears the caller's unread badge. Calling it again is a no-op.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err, utils.CodeNotificationNotFound)
		return
	}

	utils.SuccessResponse(c, "Notifications marked as read", gin.H{"updated": updated})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	idStr := c.Param("id")
	if errs := validators.ValidateObjectID(idStr); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}
	notificationID, _ := primitive.ObjectIDFromHex(idStr)

	if err := h.notificationService.MarkRead(c.Request.Context(), caller.UserID, notificationID); err != nil {
		respondServiceError(c, err, utils.CodeNotificationNotFound)
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", nil)
}
