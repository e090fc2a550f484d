package layout

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
)

// DefaultPricePerHour applies when a request leaves the price at zero.
const DefaultPricePerHour = 20.0

// MaxSlots caps the total slots one request may ask for. Grid size grows with
// the count, so an unbounded request would allocate without limit.
const MaxSlots = 2000

type Request struct {
	CarSlots     int     `json:"carSlots"`
	BikeSlots    int     `json:"bikeSlots"`
	PricePerHour float64 `json:"pricePerHour"`
}

// Normalize validates the request and fills the default price.
func (r Request) Normalize() (Request, error) {
	if r.CarSlots < 0 || r.BikeSlots < 0 {
		return r, &InputError{Op: "generate", Msg: fmt.Sprintf("slot counts must be non-negative (car=%d, bike=%d)", r.CarSlots, r.BikeSlots)}
	}
	if r.CarSlots > MaxSlots || r.BikeSlots > MaxSlots || r.CarSlots+r.BikeSlots > MaxSlots {
		return r, &InputError{Op: "generate", Msg: fmt.Sprintf("at most %d slots may be requested (car=%d, bike=%d)", MaxSlots, r.CarSlots, r.BikeSlots)}
	}
	if r.CarSlots+r.BikeSlots == 0 {
		return r, &InputError{Op: "generate", Msg: "at least one car or bike slot is required"}
	}
	if math.IsNaN(r.PricePerHour) || math.IsInf(r.PricePerHour, 0) || r.PricePerHour < 0 {
		return r, &InputError{Op: "generate", Msg: fmt.Sprintf("invalid price per hour %v", r.PricePerHour)}
	}
	if r.PricePerHour == 0 {
		r.PricePerHour = DefaultPricePerHour
	}
	return r, nil
}

// Generator produces layouts for every Kind.
type Generator struct {
	log *zerolog.Logger
}

func NewGenerator(log *zerolog.Logger) *Generator {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Generator{log: log}
}

// Generate runs one generator. Fewer slots than requested may be placed when
// the geometry cannot fit them; TotalSlots reports what was placed.
func (g *Generator) Generate(kind Kind, req Request) (*domain.Layout, error) {
	b, err := g.build(kind, req)
	if err != nil {
		metrics.IncLayoutGenerated(kind.String(), "error")
		return nil, err
	}
	l := b.layout()
	if l.TotalSlots < b.total() {
		g.log.Info().
			Str("template", kind.String()).
			Int("requested", b.total()).
			Int("placed", l.TotalSlots).
			Msg("Layout placed fewer slots than requested")
	}
	metrics.IncLayoutGenerated(kind.String(), "ok")
	return l, nil
}

// GenerateByID resolves a template id; unknown ids fall back to the drive-through grid.
func (g *Generator) GenerateByID(id string, req Request) (*domain.Layout, error) {
	kind, err := ParseKind(id)
	if err != nil {
		g.log.Warn().Str("template", id).Msg("Unknown template id, using efficient-grid")
		kind = DriveThrough
	}
	return g.Generate(kind, req)
}

func (g *Generator) build(kind Kind, req Request) (b *builder, err error) {
	req, err = req.Normalize()
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			g.log.Error().Str("template", kind.String()).Interface("panic", rec).Msg("Layout generator panicked")
			b, err = nil, fmt.Errorf("layout %s: generator failed: %v", kind, rec)
		}
	}()

	switch kind {
	case DriveThrough:
		b = driveThrough(req, g.log)
	case LinearFlow:
		b = linearFlow(req, g.log)
	case CircularFlow:
		b = circularFlow(req, g.log)
	case SeparatedZones:
		b = separatedZones(req, g.log)
	case MallStyle:
		b = mallStyle(req, g.log)
	case CompactUrban:
		b = compactUrban(req, g.log)
	default:
		return nil, &InputError{Op: "generate", Msg: fmt.Sprintf("unsupported template %s", kind)}
	}
	return b, nil
}
