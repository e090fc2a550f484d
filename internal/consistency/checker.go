// Package consistency reports drift between a property's declared slot counts
// and its stored layout document. It never modifies data.
package consistency

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	RecommendationOK    = "Layout data is consistent and ready for user booking"
	RecommendationIssue = "Layout data has consistency issues that may affect user experience"

	issuePenalty = 25
)

// Report is the result of Validate.
type Report struct {
	PropertyID   int      `json:"propertyId"`
	PropertyName string   `json:"propertyName"`
	IsValid      bool     `json:"isValid"`
	Issues       []string `json:"issues"`
	Summary      string   `json:"summary"`
}

func (r *Report) add(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
	r.IsValid = false
}

// rawLayout is a stored layout decoded without assuming any one naming scheme.
type rawLayout struct {
	doc       map[string]any
	slots     []rawSlot
	slotCount int
	hasSlots  bool
}

func decode(data json.RawMessage) (*rawLayout, bool) {
	if len(data) == 0 || string(data) == "null" {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, false
	}
	rl := &rawLayout{doc: doc}
	switch v := doc["slots"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rl.slots = append(rl.slots, slotEntry(v[k], k))
		}
		rl.slotCount = len(v)
		rl.hasSlots = len(v) > 0
	case []any:
		for _, s := range v {
			rl.slots = append(rl.slots, slotEntry(s, ""))
		}
		rl.slotCount = len(v)
		rl.hasSlots = len(v) > 0
	}
	return rl, true
}

// rawSlot is one decoded slot plus the map key it was stored under, if any.
type rawSlot struct {
	fields map[string]any
	key    string
}

func slotEntry(v any, key string) rawSlot {
	m, ok := v.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	return rawSlot{fields: m, key: key}
}

// gridRef returns the first "row-col" style value among the id fields and
// the map key.
func (s rawSlot) gridRef() string {
	for _, k := range []string{"id", "slotId", "_id"} {
		if v, ok := s.fields[k].(string); ok && strings.Contains(v, "-") {
			return v
		}
	}
	if strings.Contains(s.key, "-") {
		return s.key
	}
	return ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}

// slotComplete reports whether a slot carries an id, a vehicle type and a
// position. A hyphenated map key counts as both id and position.
func slotComplete(rs rawSlot) bool {
	s := rs.fields
	ref := rs.gridRef()
	hasID := truthy(s["id"]) || truthy(s["slotId"]) || truthy(s["_id"]) || ref != ""
	hasType := truthy(s["type"]) || truthy(s["vehicleType"])

	_, hasX := s["x"]
	_, hasY := s["y"]
	hasPosition := (hasX && hasY) ||
		ref != "" ||
		truthy(s["position"]) ||
		truthy(s["coordinates"])

	return hasID && hasType && hasPosition
}

func slotType(rs rawSlot) string {
	s := rs.fields
	if t, ok := s["type"].(string); ok && t != "" {
		return strings.ToLower(t)
	}
	if t, ok := s["vehicleType"].(string); ok {
		return strings.ToLower(t)
	}
	return ""
}

func templateName(doc map[string]any) string {
	for _, key := range []string{"templateName", "name"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Validate runs every structural check on the property's layout and collects
// one issue per failed check.
func Validate(p *domain.Property) *Report {
	r := &Report{PropertyID: p.ID, PropertyName: p.Name, IsValid: true, Issues: []string{}}
	defer func() { r.Summary = fmt.Sprintf("%d layout issues found", len(r.Issues)) }()

	rl, ok := decode(p.LayoutData)
	if !ok {
		r.add("No layout data found")
		return r
	}

	if !rl.hasSlots {
		r.add("Layout data missing slots information")
	} else {
		incomplete := 0
		for _, s := range rl.slots {
			if !slotComplete(s) {
				incomplete++
			}
		}
		if incomplete > 0 {
			r.add("%d slots have incomplete data (missing id, type, or coordinates)", incomplete)
		}
	}

	if templateName(rl.doc) == "" {
		r.add("Layout data missing template name")
	}

	declared := p.CarSlots + p.BikeSlots
	if rl.slotCount != declared {
		r.add("Slot count mismatch: Layout has %d slots, property declares %d slots", rl.slotCount, declared)
	}
	return r
}

type LayoutAnalysis struct {
	HasSlots          bool     `json:"hasSlots"`
	SlotsCount        int      `json:"slotsCount"`
	TemplateName      string   `json:"templateName"`
	GridDimensions    string   `json:"gridDimensions"`
	SlotTypes         []string `json:"slotTypes"`
	CarSlots          int      `json:"carSlots"`
	BikeSlots         int      `json:"bikeSlots"`
	IncompleteSlots   int      `json:"incompleteSlots"`
	ConsistencyIssues []string `json:"consistencyIssues"`
}

// Analysis is the owner-facing debug view of a property's layout.
type Analysis struct {
	PropertyID       int            `json:"propertyId"`
	PropertyName     string         `json:"propertyName"`
	Approved         bool           `json:"approved"`
	HasLayoutData    bool           `json:"hasLayoutData"`
	LayoutDataSize   int            `json:"layoutDataSize"`
	LayoutAnalysis   LayoutAnalysis `json:"layoutAnalysis"`
	ConsistencyScore int            `json:"consistencyScore"`
	IsConsistent     bool           `json:"isConsistent"`
	Recommendation   string         `json:"recommendation"`
}

// Analyze computes the slot type distribution, per-type and total count
// mismatches and a score that loses 25 points per issue.
func Analyze(p *domain.Property) *Analysis {
	a := &Analysis{
		PropertyID:   p.ID,
		PropertyName: p.Name,
		Approved:     p.Approved,
		LayoutAnalysis: LayoutAnalysis{
			TemplateName:      "Not specified",
			GridDimensions:    "Not specified",
			SlotTypes:         []string{},
			ConsistencyIssues: []string{},
		},
	}
	la := &a.LayoutAnalysis

	rl, ok := decode(p.LayoutData)
	if !ok {
		la.ConsistencyIssues = append(la.ConsistencyIssues, "No layout data available")
	} else {
		a.HasLayoutData = true
		a.LayoutDataSize = len(p.LayoutData)
		la.HasSlots = rl.hasSlots
		la.SlotsCount = rl.slotCount
		if name := templateName(rl.doc); name != "" {
			la.TemplateName = name
		}
		if dims := gridDimensions(rl.doc); dims != "" {
			la.GridDimensions = dims
		}

		types := make(map[string]bool)
		for _, s := range rl.slots {
			t := slotType(s)
			switch t {
			case string(domain.VehicleCar):
				la.CarSlots++
			case string(domain.VehicleBike):
				la.BikeSlots++
			}
			if t != "" && !types[t] {
				types[t] = true
				la.SlotTypes = append(la.SlotTypes, t)
			}
			if !slotComplete(s) {
				la.IncompleteSlots++
			}
		}

		if rl.hasSlots {
			declared := p.CarSlots + p.BikeSlots
			if declared != rl.slotCount {
				la.ConsistencyIssues = append(la.ConsistencyIssues,
					fmt.Sprintf("Slot count mismatch: Property declares %d slots, layout has %d slots", declared, rl.slotCount))
			}
			if la.CarSlots != p.CarSlots {
				la.ConsistencyIssues = append(la.ConsistencyIssues,
					fmt.Sprintf("Car slot mismatch: Property declares %d car slots, layout has %d car slots", p.CarSlots, la.CarSlots))
			}
			if la.BikeSlots != p.BikeSlots {
				la.ConsistencyIssues = append(la.ConsistencyIssues,
					fmt.Sprintf("Bike slot mismatch: Property declares %d bike slots, layout has %d bike slots", p.BikeSlots, la.BikeSlots))
			}
		}
	}

	a.IsConsistent = len(la.ConsistencyIssues) == 0
	a.ConsistencyScore = max(0, 100-issuePenalty*len(la.ConsistencyIssues))
	a.Recommendation = RecommendationOK
	if !a.IsConsistent {
		a.Recommendation = RecommendationIssue
	}
	return a
}

func gridDimensions(doc map[string]any) string {
	if d, ok := doc["dimensions"].(map[string]any); ok {
		rows, rok := d["rows"].(float64)
		cols, cok := d["cols"].(float64)
		if rok && cok && rows > 0 && cols > 0 {
			return fmt.Sprintf("%dx%d", int(cols), int(rows))
		}
	}
	w, wok := doc["gridWidth"].(float64)
	h, hok := doc["gridHeight"].(float64)
	if wok && hok && w > 0 && h > 0 {
		return fmt.Sprintf("%dx%d", int(w), int(h))
	}
	return ""
}
