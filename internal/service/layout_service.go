package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/editor"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

// TemplateCache stores generated template sets keyed by request.
type TemplateCache interface {
	Get(ctx context.Context, req layout.Request) ([]*domain.Layout, bool)
	Set(ctx context.Context, req layout.Request, layouts []*domain.Layout)
}

type LayoutService struct {
	gen          *layout.Generator
	catalog      *layout.Catalog
	cache        TemplateCache
	defaultPrice float64
	log          *zerolog.Logger
}

func NewLayoutService(gen *layout.Generator, catalog *layout.Catalog, cache TemplateCache, defaultPrice float64, log *zerolog.Logger) *LayoutService {
	return &LayoutService{
		gen:          gen,
		catalog:      catalog,
		cache:        cache,
		defaultPrice: defaultPrice,
		log:          orNop(log),
	}
}

func (s *LayoutService) withDefaultPrice(req layout.Request) layout.Request {
	if req.PricePerHour == 0 && s.defaultPrice > 0 {
		req.PricePerHour = s.defaultPrice
	}
	return req
}

// Templates generates one layout per catalog category.
func (s *LayoutService) Templates(ctx context.Context, req layout.Request) ([]*domain.Layout, error) {
	req, err := s.withDefaultPrice(req).Normalize()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, req); ok {
			return cached, nil
		}
	}
	layouts, err := s.catalog.GenerateAll(req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, req, layouts)
	}
	return layouts, nil
}

func (s *LayoutService) Categories() []layout.Category {
	return s.catalog.Categories()
}

// Generate builds a single template; unknown ids fall back to the drive-through grid.
func (s *LayoutService) Generate(templateID string, req layout.Request) (*domain.Layout, error) {
	return s.gen.GenerateByID(templateID, s.withDefaultPrice(req))
}

// Edit replays editor actions against base (or a blank canvas) and returns the saved layout.
func (s *LayoutService) Edit(base *domain.Layout, pricePerHour float64, actions []editor.Action) (*domain.Layout, error) {
	if pricePerHour <= 0 {
		pricePerHour = s.defaultPrice
	}
	ed := editor.New(base, pricePerHour)
	if err := ed.Apply(actions); err != nil {
		return nil, err
	}
	l, err := ed.Save()
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("template", l.TemplateID).Int("actions", len(actions)).Int("slots", l.TotalSlots).Msg("Layout edited")
	return l, nil
}

// ImportDXF rasterizes the polylines of an ASCII DXF drawing into a layout.
func (s *LayoutService) ImportDXF(r io.Reader, pricePerHour float64) (*domain.Layout, error) {
	polys, err := layout.ParseDXF(r)
	if err != nil {
		return nil, err
	}
	if pricePerHour <= 0 {
		pricePerHour = s.defaultPrice
	}
	l, err := layout.FromPolylines(polys, pricePerHour)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("polylines", len(polys)).Int("slots", l.TotalSlots).Msg("DXF layout imported")
	return l, nil
}
