package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/middleware"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/consistency"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/editor"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var caller = &domain.Identity{UserID: 3, Username: "u", Role: domain.RoleUser}

// withIdentity stands in for the auth middleware.
func withIdentity(id *domain.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != nil {
			c.Set(middleware.IdentityKey, id)
		}
		c.Next()
	}
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", repository.ErrSlotConflict), http.StatusConflict},
		{service.ErrUserAlreadyExists, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrPropertyNotApproved, http.StatusBadRequest},
		{fmt.Errorf("%w: x", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("action 2: %w", &layout.InputError{Op: "click", Msg: "outside"}), http.StatusBadRequest},
		{domain.ErrLayoutMismatch, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

type fakeBookingService struct {
	createErr error
	lastDTO   domain.CreateBookingDTO
}

func (f *fakeBookingService) Create(_ context.Context, id *domain.Identity, dto domain.CreateBookingDTO) (*domain.Booking, error) {
	f.lastDTO = dto
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Booking{ID: 1, UserID: id.UserID, PropertyID: dto.PropertyID, Slot: dto.Slot, Status: domain.BookingConfirmed}, nil
}

func (f *fakeBookingService) Mine(_ context.Context, id *domain.Identity) ([]domain.BookingView, error) {
	return []domain.BookingView{{Booking: domain.Booking{ID: 1, UserID: id.UserID}, SlotNumber: "C01"}}, nil
}

func (f *fakeBookingService) Cancel(_ context.Context, _ *domain.Identity, bookingID int) (*domain.Booking, error) {
	if bookingID == 404 {
		return nil, repository.ErrNotFound
	}
	return nil, service.ErrForbidden
}

func bookingEngine(svc BookingService, id *domain.Identity) *gin.Engine {
	h := NewBookingHandler(svc)
	r := gin.New()
	r.Use(withIdentity(id))
	r.POST("/bookings", h.Create)
	r.GET("/bookings/mine", h.Mine)
	r.PUT("/bookings/:id/cancel", h.Cancel)
	return r
}

func TestBookingHandlerCreate(t *testing.T) {
	svc := &fakeBookingService{}
	r := bookingEngine(svc, caller)

	w := perform(r, http.MethodPost, "/bookings", map[string]any{"property_id": 4, "slot": "0-0", "hours": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, svc.lastDTO.Hours)
	assert.Contains(t, w.Body.String(), "Booking created successfully")

	w = perform(r, http.MethodPost, "/bookings", map[string]any{"slot": "0-0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.createErr = fmt.Errorf("%w: slot 0-0", repository.ErrSlotConflict)
	w = perform(r, http.MethodPost, "/bookings", map[string]any{"property_id": 4, "slot": "0-0", "hours": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, errorBody(t, w), "slot 0-0")

	svc.createErr = errors.New("connection reset")
	w = perform(r, http.MethodPost, "/bookings", map[string]any{"property_id": 4, "slot": "0-0", "hours": 2})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Could not create booking", errorBody(t, w))
}

func TestBookingHandlerRequiresIdentity(t *testing.T) {
	r := bookingEngine(&fakeBookingService{}, nil)
	w := perform(r, http.MethodGet, "/bookings/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandlerCancel(t *testing.T) {
	r := bookingEngine(&fakeBookingService{}, caller)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPut, "/bookings/abc/cancel", nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodPut, "/bookings/404/cancel", nil).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPut, "/bookings/7/cancel", nil).Code)

	w := perform(r, http.MethodGet, "/bookings/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slotNumber":"C01"`)
}

type fakePropertyService struct {
	PropertyService
	slotsVehicle domain.VehicleType
}

func (f *fakePropertyService) Slots(_ context.Context, propertyID int, vehicle domain.VehicleType) ([]domain.SlotAvailability, error) {
	f.slotsVehicle = vehicle
	if propertyID == 2 {
		return nil, service.ErrPropertyNotApproved
	}
	return []domain.SlotAvailability{{ID: "0-0", Property: propertyID, IsAvailable: true}}, nil
}

func (f *fakePropertyService) SearchNearby(_ context.Context, lat, lng, radius float64) ([]domain.NearbyProperty, error) {
	return []domain.NearbyProperty{{Property: domain.Property{ID: 1}, Distance: radius}}, nil
}

func (f *fakePropertyService) ValidateLayout(_ context.Context, _ *domain.Identity, propertyID int) (*consistency.Report, error) {
	return &consistency.Report{PropertyID: propertyID, IsValid: true, Issues: []string{}, Summary: "0 layout issues found"}, nil
}

func (f *fakePropertyService) SetActive(_ context.Context, _ *domain.Identity, propertyID int, active bool) (*domain.Property, error) {
	return &domain.Property{ID: propertyID, Active: active}, nil
}

func TestPropertyHandler(t *testing.T) {
	svc := &fakePropertyService{}
	h := NewPropertyHandler(svc)
	r := gin.New()
	r.Use(withIdentity(caller))
	r.GET("/properties/nearby", h.Nearby)
	r.GET("/properties/:id/slots", h.Slots)
	r.GET("/properties/:id/layout/validate", h.ValidateLayout)
	r.PUT("/properties/:id/status", h.SetActive)

	w := perform(r, http.MethodGet, "/properties/5/slots?vehicleType=bike", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.VehicleBike, svc.slotsVehicle)
	assert.Contains(t, w.Body.String(), `"_id":"0-0"`)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/properties/2/slots", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/properties/0/slots", nil).Code)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/properties/nearby?lat=12.9", nil).Code)
	w = perform(r, http.MethodGet, "/properties/nearby?lat=12.9&lng=77.5&radius=1500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"distance":1500`)

	w = perform(r, http.MethodGet, "/properties/9/layout/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isValid":true`)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPut, "/properties/9/status", map[string]any{}).Code)
	w = perform(r, http.MethodPut, "/properties/9/status", map[string]any{"active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}

type fakeLayoutService struct {
	lastPrice float64
	dxf       string
}

func (f *fakeLayoutService) Templates(_ context.Context, req layout.Request) ([]*domain.Layout, error) {
	if req.CarSlots+req.BikeSlots == 0 {
		return nil, &layout.InputError{Op: "generate", Msg: "at least one car or bike slot is required"}
	}
	return []*domain.Layout{{TemplateID: "efficient-grid"}}, nil
}

func (f *fakeLayoutService) Categories() []layout.Category {
	return []layout.Category{{ID: "efficient-grid", Name: "Drive-Through"}}
}

func (f *fakeLayoutService) Generate(templateID string, req layout.Request) (*domain.Layout, error) {
	return &domain.Layout{TemplateID: templateID, TotalSlots: req.CarSlots + req.BikeSlots}, nil
}

func (f *fakeLayoutService) Edit(base *domain.Layout, price float64, actions []editor.Action) (*domain.Layout, error) {
	f.lastPrice = price
	if len(actions) > 0 && actions[0].Type == "explode" {
		return nil, fmt.Errorf("action 0: %w", &layout.InputError{Op: "apply", Msg: "unknown action"})
	}
	return &domain.Layout{TemplateID: editor.CustomTemplateID}, nil
}

func (f *fakeLayoutService) ImportDXF(r io.Reader, price float64) (*domain.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.dxf = string(data)
	f.lastPrice = price
	return &domain.Layout{TemplateID: layout.DXFTemplateID}, nil
}

func layoutEngine(svc LayoutService) *gin.Engine {
	h := NewLayoutHandler(svc)
	r := gin.New()
	r.POST("/layouts/templates", h.Templates)
	r.POST("/layouts/generate", h.Generate)
	r.POST("/layouts/edit", h.Edit)
	r.POST("/layouts/import-dxf", h.ImportDXF)
	return r
}

func TestLayoutHandler(t *testing.T) {
	svc := &fakeLayoutService{}
	r := layoutEngine(svc)

	w := perform(r, http.MethodPost, "/layouts/templates", map[string]any{"carSlots": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"categories"`)

	w = perform(r, http.MethodPost, "/layouts/templates", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/layouts/generate", map[string]any{"templateId": "mall-style", "carSlots": 3, "bikeSlots": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"templateId":"mall-style"`)
	assert.Contains(t, w.Body.String(), `"totalSlots":4`)

	w = perform(r, http.MethodPost, "/layouts/edit", map[string]any{"pricePerHour": 15, "actions": []map[string]any{{"type": "explode"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 15.0, svc.lastPrice)
}

func TestLayoutHandlerImportDXF(t *testing.T) {
	svc := &fakeLayoutService{}
	r := layoutEngine(svc)

	req := httptest.NewRequest(http.MethodPost, "/layouts/import-dxf?pricePerHour=12", strings.NewReader("0\nEOF\n"))
	req.Header.Set("Content-Type", "application/dxf")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0\nEOF\n", svc.dxf)
	assert.Equal(t, 12.0, svc.lastPrice)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "lot.dxf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("0\nSECTION\n"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/layouts/import-dxf", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0\nSECTION\n", svc.dxf)

	req = httptest.NewRequest(http.MethodPost, "/layouts/import-dxf?pricePerHour=abc", strings.NewReader(""))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
