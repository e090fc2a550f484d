package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

type BookingService interface {
	Create(ctx context.Context, id *domain.Identity, dto domain.CreateBookingDTO) (*domain.Booking, error)
	Mine(ctx context.Context, id *domain.Identity) ([]domain.BookingView, error)
	Cancel(ctx context.Context, id *domain.Identity, bookingID int) (*domain.Booking, error)
}

type BookingHandler struct {
	bookingService BookingService
}

func NewBookingHandler(bs BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

// POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var dto domain.CreateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingService.Create(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "Could not create booking")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": b})
}

// GET /bookings/mine
func (h *BookingHandler) Mine(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	views, err := h.bookingService.Mine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not list bookings")
		return
	}
	c.JSON(http.StatusOK, views)
}

// PUT /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	bookingID, ok := paramID(c, "id", "booking")
	if !ok {
		return
	}
	b, err := h.bookingService.Cancel(c.Request.Context(), id, bookingID)
	if err != nil {
		respondError(c, err, "Could not cancel booking")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": b})
}
