package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/editor"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

type memoryCache struct {
	entries map[layout.Request][]*domain.Layout
	gets    int
}

func (c *memoryCache) Get(_ context.Context, req layout.Request) ([]*domain.Layout, bool) {
	c.gets++
	l, ok := c.entries[req]
	return l, ok
}

func (c *memoryCache) Set(_ context.Context, req layout.Request, layouts []*domain.Layout) {
	c.entries[req] = layouts
}

func newLayoutService(cache TemplateCache) *LayoutService {
	gen := layout.NewGenerator(testLogger())
	return NewLayoutService(gen, layout.NewCatalog(gen, layout.DefaultCategories(), testLogger()), cache, 25, testLogger())
}

func TestLayoutTemplatesUsesCache(t *testing.T) {
	cache := &memoryCache{entries: map[layout.Request][]*domain.Layout{}}
	svc := newLayoutService(cache)
	ctx := context.Background()

	first, err := svc.Templates(ctx, layout.Request{CarSlots: 6, BikeSlots: 2})
	require.NoError(t, err)
	require.Len(t, first, 4)
	assert.Contains(t, cache.entries, layout.Request{CarSlots: 6, BikeSlots: 2, PricePerHour: 25})
	for _, l := range first {
		for _, s := range l.Slots {
			assert.Equal(t, 25.0, s.PricePerHour)
		}
	}

	second, err := svc.Templates(ctx, layout.Request{CarSlots: 6, BikeSlots: 2})
	require.NoError(t, err)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 2, cache.gets)

	_, err = svc.Templates(ctx, layout.Request{})
	var inputErr *layout.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestLayoutTemplatesWithoutCache(t *testing.T) {
	svc := newLayoutService(nil)
	layouts, err := svc.Templates(context.Background(), layout.Request{CarSlots: 3, PricePerHour: 40})
	require.NoError(t, err)
	assert.Len(t, layouts, 4)
	assert.Len(t, svc.Categories(), 4)
}

func TestLayoutGenerateFallsBack(t *testing.T) {
	svc := newLayoutService(nil)
	l, err := svc.Generate("no-such-template", layout.Request{CarSlots: 4})
	require.NoError(t, err)
	assert.Equal(t, "efficient-grid", l.TemplateID)
}

func TestLayoutEdit(t *testing.T) {
	svc := newLayoutService(nil)
	l, err := svc.Edit(nil, 0, []editor.Action{
		{Type: editor.ActionResetBlank, CarSlots: 2},
		{Type: editor.ActionSetMode, Mode: editor.ModeAdd},
		{Type: editor.ActionClick, Row: 0, Col: 0},
		{Type: editor.ActionSetNewSlotType, VehicleType: domain.VehicleBike},
		{Type: editor.ActionClick, Row: 1, Col: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, editor.ManualTemplateID, l.TemplateID)
	assert.Equal(t, 2, l.TotalSlots)
	assert.Equal(t, 1, l.BikeSlots)
	s, ok := l.Slots.Lookup("0-0")
	require.True(t, ok)
	assert.Equal(t, 25.0, s.PricePerHour)

	_, err = svc.Edit(nil, 0, []editor.Action{{Type: "explode"}})
	var inputErr *layout.InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestLayoutImportDXF(t *testing.T) {
	svc := newLayoutService(nil)
	dxf := strings.Join([]string{
		"0", "SECTION", "2", "ENTITIES",
		"0", "LWPOLYLINE", "90", "4",
		"10", "0", "20", "0",
		"10", "100", "20", "0",
		"10", "100", "20", "50",
		"10", "0", "20", "50",
		"0", "ENDSEC", "0", "EOF",
	}, "\n")
	l, err := svc.ImportDXF(strings.NewReader(dxf), 0)
	require.NoError(t, err)
	assert.Equal(t, layout.DXFTemplateID, l.TemplateID)
	assert.Equal(t, 4, l.TotalSlots)

	_, err = svc.ImportDXF(strings.NewReader("0\nEOF\n"), 0)
	assert.Error(t, err)
}
