package piece

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Stacker, "stacker"},
		{ThinStacker, "thin_stacker"},
		{CurvedPiece, "curved_piece"},
		{Kind(0), "Kind(0)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got, err := ParseKind("thin-stacker"); err != nil || got != ThinStacker {
		t.Errorf("ParseKind(thin-stacker) = %v, %v", got, err)
	}
	if _, err := ParseKind("marble"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(marble) error = %v, want ErrUnknownKind", err)
	}
}

func TestToolKind(t *testing.T) {
	tests := []struct {
		tool     Tool
		wantKind Kind
		wantOK   bool
	}{
		{Stacker.Tool(), Stacker, true},
		{Tool("curved_piece"), CurvedPiece, true},
		{ToolNone, 0, false},
		{Tool("eraser"), 0, false},
	}
	for _, tt := range tests {
		k, ok := tt.tool.Kind()
		if k != tt.wantKind || ok != tt.wantOK {
			t.Errorf("Tool(%q).Kind() = %v, %v; want %v, %v", tt.tool, k, ok, tt.wantKind, tt.wantOK)
		}
		if tt.tool.IsPlacement() != tt.wantOK {
			t.Errorf("Tool(%q).IsPlacement() = %v", tt.tool, tt.tool.IsPlacement())
		}
	}
	if Kind(9).Tool() != ToolNone {
		t.Error("invalid kind should map to ToolNone")
	}
}
