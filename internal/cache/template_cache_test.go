package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

func newTestCache(t *testing.T, ttl time.Duration) (*TemplateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := zerolog.New(io.Discard)
	return NewTemplateCache(client, ttl, &log), mr
}

func TestTemplateCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	req := layout.Request{CarSlots: 4, BikeSlots: 2, PricePerHour: 25}

	_, hit := c.Get(ctx, req)
	assert.False(t, hit)

	gen := layout.NewGenerator(nil)
	l, err := gen.Generate(layout.MallStyle, req)
	require.NoError(t, err)
	c.Set(ctx, req, []*domain.Layout{l})

	assert.True(t, mr.Exists("parking:templates:4:2:25"))
	got, hit := c.Get(ctx, req)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, l.TemplateID, got[0].TemplateID)
	assert.Equal(t, l.TotalSlots, got[0].TotalSlots)
	assert.Equal(t, len(l.Slots), len(got[0].Slots))

	mr.FastForward(2 * time.Minute)
	_, hit = c.Get(ctx, req)
	assert.False(t, hit)
}

func TestTemplateCacheIgnoresCorruptEntries(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	req := layout.Request{CarSlots: 1, PricePerHour: 20}
	require.NoError(t, mr.Set(Key(req), "{not json"))

	_, hit := c.Get(context.Background(), req)
	assert.False(t, hit)
}

func TestTemplateCacheDisabled(t *testing.T) {
	var nilCache *TemplateCache
	_, hit := nilCache.Get(context.Background(), layout.Request{CarSlots: 1})
	assert.False(t, hit)
	nilCache.Set(context.Background(), layout.Request{CarSlots: 1}, nil)

	c, mr := newTestCache(t, 0)
	c.Set(context.Background(), layout.Request{CarSlots: 1, PricePerHour: 20}, nil)
	assert.Empty(t, mr.Keys())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "parking:templates:10:5:20.5", Key(layout.Request{CarSlots: 10, BikeSlots: 5, PricePerHour: 20.5}))
}
