package layout

import "fmt"

// Kind selects one of the layout generators.
type Kind int

const (
	DriveThrough Kind = iota + 1
	LinearFlow
	CircularFlow
	SeparatedZones
	MallStyle
	CompactUrban
)

var kindIDs = map[Kind]string{
	DriveThrough:   "efficient-grid",
	LinearFlow:     "linear-flow",
	CircularFlow:   "circular-flow",
	SeparatedZones: "separated-zones",
	MallStyle:      "mall-style",
	CompactUrban:   "compact-urban",
}

var kindNames = map[Kind]string{
	DriveThrough:   "Drive-Through Layout",
	LinearFlow:     "One-Way Mall Style",
	CircularFlow:   "Roundabout Style",
	SeparatedZones: "Airport Style Premium",
	MallStyle:      "Mall Style Layout",
	CompactUrban:   "Compact Urban Layout",
}

// AllKinds lists every generator, including the ones not shown in the catalog.
func AllKinds() []Kind {
	return []Kind{DriveThrough, LinearFlow, CircularFlow, SeparatedZones, MallStyle, CompactUrban}
}

// String returns the persisted template id.
func (k Kind) String() string {
	if id, ok := kindIDs[k]; ok {
		return id
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// LayoutName is the templateName written on generated layouts.
func (k Kind) LayoutName() string {
	return kindNames[k]
}

func ParseKind(id string) (Kind, error) {
	for k, v := range kindIDs {
		if v == id {
			return k, nil
		}
	}
	return 0, &InputError{Op: "parse template id", Msg: fmt.Sprintf("unknown template %q", id)}
}
