package handler

import (
	"errors"
	"net/http"

	"contact_book/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	service service.AuthService
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required,max=20"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Phone and password are required: "+err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		h.log.Error("registration failed", zap.String("phone", req.Phone), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"id":    user.ID,
		"phone": user.Phone,
		"roles": user.Roles(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Phone and password are required")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		// Unknown phone and wrong password produce the same body
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}
		h.log.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"phone": user.Phone,
			"roles": user.Roles(),
		},
	})
}

// RegisterAuthRoutes registers auth routes on the /api group
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login_check", h.Login)
}
