package http

import (
	"net/http"

	"github.com/dmitrijs2005/orgchat/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth AuthAPI
}

func NewAuthHandler(a AuthAPI) *AuthHandler {
	return &AuthHandler{auth: a}
}

type signupRequest struct {
	Username   string  `json:"username" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required"`
	Name       *string `json:"name"`
	Department *string `json:"department"`
}

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Provider      string `json:"provider"`
	ProviderToken string `json:"provider_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type validateResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterRequest{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Department: req.Department,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), services.LoginRequest(req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailResponse{Detail: "Logged out"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	res, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailResponse{Detail: services.ResetConfirmedMessage})
}

// Validate answers for the bearer token already checked by BearerAuth.
func (h *AuthHandler) Validate(c *gin.Context) {
	c.JSON(http.StatusOK, validateResponse{
		UserID:   currentUserID(c),
		Username: c.GetString(ctxUsernameKey),
		Valid:    true,
	})
}
