package engine

import (
	"fmt"
	"time"

	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/piece"
)

// Op identifies what a Command does.
type Op int

const (
	OpPlace     Op = iota // place Kind at Coord, bypassing picking
	OpAllow               // add Coord to the allow-set
	OpAllowDisk           // add every cell of the disk of Radius
	OpTool                // select Tool
	OpMove                // pointer move at X, Y
	OpTouch               // single-finger touch move at X, Y
	OpClick               // click commit at X, Y
	OpRelease             // touch end with no remaining contacts
	OpWait                // advance the clock by Wait
	OpClear               // remove every placed piece
)

func (o Op) String() string {
	switch o {
	case OpPlace:
		return "place"
	case OpAllow:
		return "allow"
	case OpAllowDisk:
		return "allow-disk"
	case OpTool:
		return "tool"
	case OpMove:
		return "move"
	case OpTouch:
		return "touch"
	case OpClick:
		return "click"
	case OpRelease:
		return "release"
	case OpWait:
		return "wait"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Command is one recorded script step. Only the fields relevant to Op are set.
type Command struct {
	Op     Op
	Kind   piece.Kind
	Coord  hex.Coord
	Radius int
	Tool   piece.Tool
	X, Y   float64
	Wait   time.Duration
}

func (c Command) String() string {
	switch c.Op {
	case OpPlace:
		return fmt.Sprintf("place %s (%d,%d)", c.Kind, c.Coord.Q, c.Coord.R)
	case OpAllow:
		return fmt.Sprintf("allow (%d,%d)", c.Coord.Q, c.Coord.R)
	case OpAllowDisk:
		return fmt.Sprintf("allow-disk %d", c.Radius)
	case OpTool:
		if c.Tool == piece.ToolNone {
			return "tool none"
		}
		return fmt.Sprintf("tool %s", c.Tool)
	case OpMove, OpTouch, OpClick:
		return fmt.Sprintf("%s %g %g", c.Op, c.X, c.Y)
	case OpWait:
		return fmt.Sprintf("wait %s", c.Wait)
	default:
		return c.Op.String()
	}
}

// Script is the ordered list of commands recorded by one evaluation.
type Script struct {
	Commands []Command
}

func (s *Script) record(c Command) {
	s.Commands = append(s.Commands, c)
}

// Len returns the number of recorded commands.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Commands)
}
