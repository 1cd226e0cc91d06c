package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/services"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications NotificationAPI
}

func NewNotificationHandler(n NotificationAPI) *NotificationHandler {
	return &NotificationHandler{notifications: n}
}

type createNotificationRequest struct {
	UserID string                  `json:"user_id" binding:"required"`
	Type   models.NotificationType `json:"type"`
	Data   json.RawMessage         `json:"data"`
}

type updateNotificationRequest struct {
	Status *models.NotificationStatus `json:"status"`
	Data   json.RawMessage            `json:"data"`
}

type notificationQuery struct {
	pageQuery
	Status models.NotificationStatus `form:"status"`
	Type   models.NotificationType   `form:"type"`
}

type markAllResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// Create adds a notification for any existing user.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	n, err := h.notifications.Create(c.Request.Context(), req.UserID, req.Type, req.Data)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) List(c *gin.Context) {
	q := notificationQuery{pageQuery: pageQuery{Page: 1, Size: services.DefaultPageSize}}
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	page, err := h.notifications.List(c.Request.Context(), currentUserID(c),
		models.NotificationFilter{Status: q.Status, Type: q.Type}, q.Page, q.Size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) Get(c *gin.Context) {
	n, err := h.notifications.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) Update(c *gin.Context) {
	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	n, err := h.notifications.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req.Status, req.Data)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.notifications.MarkRead(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notifications.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, markAllResponse{
		Message: fmt.Sprintf("%d notifications marked as read", count),
		Count:   count,
	})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
