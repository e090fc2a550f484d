package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error)
	Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error)
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(as AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "Could not register user")
		return
	}
	user.Password = ""
	c.JSON(http.StatusCreated, user)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, authResponse)
}
