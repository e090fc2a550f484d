package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/consistency"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

type PropertyService interface {
	Create(ctx context.Context, id *domain.Identity, dto domain.CreatePropertyDTO) (*domain.Property, error)
	ListApproved(ctx context.Context) ([]domain.Property, error)
	SearchNearby(ctx context.Context, lat, lng, radius float64) ([]domain.NearbyProperty, error)
	Get(ctx context.Context, propertyID int) (*domain.Property, error)
	Mine(ctx context.Context, id *domain.Identity) ([]domain.Property, error)
	Pending(ctx context.Context, id *domain.Identity) ([]domain.Property, error)
	Approve(ctx context.Context, id *domain.Identity, propertyID int) (*domain.Property, error)
	SetActive(ctx context.Context, id *domain.Identity, propertyID int, active bool) (*domain.Property, error)
	Delete(ctx context.Context, id *domain.Identity, propertyID int) error
	UpdateLayout(ctx context.Context, id *domain.Identity, propertyID int, l *domain.Layout) (*domain.Property, error)
	Slots(ctx context.Context, propertyID int, vehicle domain.VehicleType) ([]domain.SlotAvailability, error)
	ValidateLayout(ctx context.Context, id *domain.Identity, propertyID int) (*consistency.Report, error)
	DebugLayout(ctx context.Context, id *domain.Identity, propertyID int) (*consistency.Analysis, error)
	RentalStats(ctx context.Context, id *domain.Identity) (*domain.RentalStats, error)
}

type PropertyHandler struct {
	propertyService PropertyService
}

func NewPropertyHandler(ps PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: ps}
}

// POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var dto domain.CreatePropertyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.propertyService.Create(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err, "Could not create property")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Parking property submitted for owner approval", "property": p})
}

// GET /properties
func (h *PropertyHandler) ListApproved(c *gin.Context) {
	props, err := h.propertyService.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err, "Could not list properties")
		return
	}
	c.JSON(http.StatusOK, props)
}

// GET /properties/nearby?lat=&lng=&radius=
func (h *PropertyHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude and longitude are required"})
		return
	}
	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
		radius = r
	}
	hits, err := h.propertyService.SearchNearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, err, "Could not search properties")
		return
	}
	c.JSON(http.StatusOK, hits)
}

// GET /properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	p, err := h.propertyService.Get(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err, "Could not load property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /properties/:id/slots?vehicleType=car|bike
func (h *PropertyHandler) Slots(c *gin.Context) {
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	slots, err := h.propertyService.Slots(c.Request.Context(), propertyID, domain.VehicleType(c.Query("vehicleType")))
	if err != nil {
		respondError(c, err, "Could not load slots")
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GET /rental/properties
func (h *PropertyHandler) Mine(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	props, err := h.propertyService.Mine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not list properties")
		return
	}
	c.JSON(http.StatusOK, props)
}

// GET /rental/stats
func (h *PropertyHandler) RentalStats(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	stats, err := h.propertyService.RentalStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /owner/properties/pending
func (h *PropertyHandler) Pending(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	props, err := h.propertyService.Pending(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Could not list pending properties")
		return
	}
	c.JSON(http.StatusOK, props)
}

// PUT /properties/:id/approve
func (h *PropertyHandler) Approve(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	p, err := h.propertyService.Approve(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err, "Could not approve property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property approved", "property": p})
}

// PUT /properties/:id/status
func (h *PropertyHandler) SetActive(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	var dto domain.TogglePropertyStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.propertyService.SetActive(c.Request.Context(), id, propertyID, *dto.Active)
	if err != nil {
		respondError(c, err, "Could not update property status")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	if err := h.propertyService.Delete(c.Request.Context(), id, propertyID); err != nil {
		respondError(c, err, "Could not delete property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// PUT /properties/:id/layout
func (h *PropertyHandler) UpdateLayout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	var dto domain.UpdateLayoutDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.propertyService.UpdateLayout(c.Request.Context(), id, propertyID, dto.LayoutData)
	if err != nil {
		respondError(c, err, "Could not update layout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Layout updated", "property": p})
}

// GET /properties/:id/layout/validate
func (h *PropertyHandler) ValidateLayout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	report, err := h.propertyService.ValidateLayout(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err, "Could not validate layout")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /properties/:id/layout/debug
func (h *PropertyHandler) DebugLayout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id", "property")
	if !ok {
		return
	}
	analysis, err := h.propertyService.DebugLayout(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err, "Could not analyze layout")
		return
	}
	c.JSON(http.StatusOK, analysis)
}
