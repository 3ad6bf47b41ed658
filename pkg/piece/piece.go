// Package piece defines the closed set of placeable piece kinds and the
// tool identifiers the selection UI hands to the placement core.
package piece

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a kind identifier names no piece.
var ErrUnknownKind = errors.New("unknown piece kind")

// Kind enumerates placeable pieces. The zero value is not a piece.
type Kind int

const (
	Stacker     Kind = iota + 1 // full-height hex stacker
	ThinStacker                 // half-height hex stacker
	CurvedPiece                 // solid track tile
)

// Kinds lists every piece kind in declaration order.
var Kinds = []Kind{Stacker, ThinStacker, CurvedPiece}

func (k Kind) String() string {
	switch k {
	case Stacker:
		return "stacker"
	case ThinStacker:
		return "thin_stacker"
	case CurvedPiece:
		return "curved_piece"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k names a piece.
func (k Kind) Valid() bool {
	return k >= Stacker && k <= CurvedPiece
}

// Tool returns the tool identifier that selects this kind.
func (k Kind) Tool() Tool {
	if !k.Valid() {
		return ToolNone
	}
	return Tool(k.String())
}

// ParseKind accepts the canonical identifiers plus their kebab-case forms.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "stacker":
		return Stacker, nil
	case "thin_stacker", "thin-stacker":
		return ThinStacker, nil
	case "curved_piece", "curved-piece":
		return CurvedPiece, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Tool is the identifier of the tool currently selected in the UI. Any
// value that is not a piece identifier means no placement is active.
type Tool string

// ToolNone is the non-placement sentinel.
const ToolNone Tool = ""

// Kind returns the piece kind the tool places, if any.
func (t Tool) Kind() (Kind, bool) {
	k, err := ParseKind(string(t))
	if err != nil {
		return 0, false
	}
	return k, true
}

// IsPlacement reports whether the tool places pieces.
func (t Tool) IsPlacement() bool {
	_, ok := t.Kind()
	return ok
}
