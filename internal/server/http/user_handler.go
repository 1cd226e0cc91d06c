package http

import (
	"net/http"

	"github.com/dmitrijs2005/orgchat/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users UserAPI
}

func NewUserHandler(u UserAPI) *UserHandler {
	return &UserHandler{users: u}
}

type pageQuery struct {
	Page int `form:"page,default=1"`
	Size int `form:"size,default=10"`
}

type statusRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	q := pageQuery{Page: 1, Size: services.DefaultPageSize}
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	page, err := h.users.List(c.Request.Context(), q.Page, q.Size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	msg, err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
