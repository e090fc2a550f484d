package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotUnavailable SlotStatus = "unavailable"
)

type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleBike VehicleType = "bike"
)

func (v VehicleType) Valid() bool {
	return v == VehicleCar || v == VehicleBike
}

// Slot is the metadata of one bookable grid cell.
type Slot struct {
	ID           string      `json:"id"`
	SlotNumber   string      `json:"slotNumber"`
	Status       SlotStatus  `json:"status"`
	VehicleType  VehicleType `json:"vehicleType"`
	PricePerHour float64     `json:"pricePerHour"`
	Direction    string      `json:"direction,omitempty"`
	Zone         string      `json:"zone,omitempty"`
}

// SlotNumber renders the index-th (0-based) slot of a vehicle type, e.g. C01, B12.
func SlotNumber(index int, vt VehicleType) string {
	prefix := "C"
	if vt == VehicleBike {
		prefix = "B"
	}
	return fmt.Sprintf("%s%02d", prefix, index+1)
}

// SlotMap holds slot metadata keyed by grid position. On the wire it is an
// object keyed by "row-col".
type SlotMap map[Position]Slot

func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Positions returns the keys in row-major order.
func (m SlotMap) Positions() []Position {
	keys := make([]Position, 0, len(m))
	for p := range m {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Lookup finds a slot by its "row-col" id.
func (m SlotMap) Lookup(id string) (Slot, bool) {
	p, err := ParsePosition(id)
	if err != nil {
		return Slot{}, false
	}
	s, ok := m[p]
	return s, ok
}

func (m SlotMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]Slot, len(m))
	for p, s := range m {
		if s.ID == "" {
			s.ID = p.ID()
		}
		raw[p.ID()] = s
	}
	return json.Marshal(raw)
}

// UnmarshalJSON skips keys that are not "row-col" ids; such entries cannot be
// placed on the grid.
func (m *SlotMap) UnmarshalJSON(data []byte) error {
	var raw map[string]Slot
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SlotMap, len(raw))
	for key, s := range raw {
		p, err := ParsePosition(key)
		if err != nil {
			continue
		}
		s.ID = p.ID()
		out[p] = s
	}
	*m = out
	return nil
}
