package editor

import (
	"fmt"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

type ActionType string

const (
	ActionSetMode           ActionType = "set-mode"
	ActionClick             ActionType = "click"
	ActionToggleVehicleType ActionType = "toggle-vehicle-type"
	ActionSetNewSlotType    ActionType = "set-new-slot-type"
	ActionResetBlank        ActionType = "reset-blank"
)

// Action is one recorded editor interaction, replayed server-side.
type Action struct {
	Type        ActionType         `json:"type"`
	Mode        Mode               `json:"mode,omitempty"`
	Row         int                `json:"row"`
	Col         int                `json:"col"`
	VehicleType domain.VehicleType `json:"vehicleType,omitempty"`
	CarSlots    int                `json:"carSlots,omitempty"`
	BikeSlots   int                `json:"bikeSlots,omitempty"`
}

// Apply replays actions in order and stops at the first invalid one.
func (e *Editor) Apply(actions []Action) error {
	for i, a := range actions {
		var err error
		switch a.Type {
		case ActionSetMode:
			err = e.SetMode(a.Mode)
		case ActionClick:
			_, err = e.Click(a.Row, a.Col)
		case ActionToggleVehicleType:
			e.ToggleVehicleType(a.Row, a.Col)
		case ActionSetNewSlotType:
			err = e.SetNewSlotType(a.VehicleType)
		case ActionResetBlank:
			e.ResetBlank(a.CarSlots, a.BikeSlots)
		default:
			err = &layout.InputError{Op: "apply", Msg: fmt.Sprintf("unknown action %q", a.Type)}
		}
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}
