package domain

import (
	"encoding/json"
	"time"

	"gopkg.in/guregu/null.v4"
)

type Property struct {
	ID            int             `json:"id"`
	RentalID      int             `json:"rental_id"`
	OwnerID       null.Int        `json:"owner_id"`
	Name          string          `json:"name"`
	Address       string          `json:"address,omitempty"`
	FullAddress   string          `json:"full_address"`
	ContactNumber string          `json:"contact_number"`
	Longitude     float64         `json:"longitude"`
	Latitude      float64         `json:"latitude"`
	CarSlots      int             `json:"car_slots"`
	BikeSlots     int             `json:"bike_slots"`
	PricePerHour  float64         `json:"price_per_hour"`
	Approved      bool            `json:"approved"`
	Active        bool            `json:"active"`
	LayoutData    json.RawMessage `json:"layout_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// HasLayout reports whether a non-null layout document is stored.
func (p *Property) HasLayout() bool {
	return len(p.LayoutData) > 0 && string(p.LayoutData) != "null"
}

// Layout decodes the stored layout document. It returns (nil, nil) when none is stored.
func (p *Property) Layout() (*Layout, error) {
	if !p.HasLayout() {
		return nil, nil
	}
	var l Layout
	if err := json.Unmarshal(p.LayoutData, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// NearbyProperty is a search hit with its great-circle distance in meters.
type NearbyProperty struct {
	Property
	Distance float64 `json:"distance"`
}

type CreatePropertyDTO struct {
	Name          string  `json:"name" binding:"required"`
	Address       string  `json:"address"`
	FullAddress   string  `json:"full_address" binding:"required"`
	ContactNumber string  `json:"contact_number" binding:"required"`
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	CarSlots      int     `json:"car_slots"`
	BikeSlots     int     `json:"bike_slots"`
	PricePerHour  float64 `json:"price_per_hour" binding:"required"`
	LayoutData    *Layout `json:"layout_data,omitempty"`
}

type UpdateLayoutDTO struct {
	LayoutData *Layout `json:"layout_data" binding:"required"`
}

type TogglePropertyStatusDTO struct {
	Active *bool `json:"active" binding:"required"`
}

// RentalStats is the per-rental dashboard aggregate.
type RentalStats struct {
	TotalProperties    int     `json:"totalProperties"`
	TotalCarSlots      int     `json:"totalCarSlots"`
	TotalBikeSlots     int     `json:"totalBikeSlots"`
	TotalBookings      int     `json:"totalBookings"`
	ActiveBookings     int     `json:"activeBookings"`
	TotalRevenue       float64 `json:"totalRevenue"`
	MonthlyRevenue     float64 `json:"monthlyRevenue"`
	CarsBooked         int     `json:"carsBooked"`
	BikesBooked        int     `json:"bikesBooked"`
	OccupancyRate      float64 `json:"occupancyRate"`
	AvailableCarSlots  int     `json:"availableCarSlots"`
	AvailableBikeSlots int     `json:"availableBikeSlots"`
}
