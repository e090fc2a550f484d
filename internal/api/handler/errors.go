package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/middleware"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/service"
)

// statusFor maps service and repository errors onto HTTP status codes.
func statusFor(err error) int {
	var inputErr *layout.InputError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrSlotConflict),
		errors.Is(err, repository.ErrDuplicateEntry),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrPropertyNotApproved),
		errors.Is(err, domain.ErrLayoutMismatch),
		errors.As(err, &inputErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func identity(c *gin.Context) (*domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return id, ok
}

func paramID(c *gin.Context, name, label string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}
