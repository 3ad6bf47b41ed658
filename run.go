package main

import (
	"fmt"
	"time"

	"github.com/chazu/hexstack/pkg/engine"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/picking"
	"github.com/chazu/hexstack/pkg/placement"
)

// scriptClock is the virtual clock scripts run on. It only moves on wait.
type scriptClock struct {
	t time.Time
}

func (c *scriptClock) now() time.Time { return c.t }

// Run replays a recorded script and returns the pieces it placed, in
// order. Pointer input is throttled against a virtual clock that starts at
// the current time and advances only on wait commands; the throttle is
// reset when replay ends so live input is not keyed to script time.
// Replay stops at the first failing command.
func (a *App) Run(s *engine.Script) ([]*placement.PlacedPiece, error) {
	if s == nil {
		return nil, nil
	}

	clock := &scriptClock{t: a.now()}
	saved := a.now
	a.now = clock.now
	defer func() {
		a.now = saved
		a.hover.ResetThrottle()
	}()

	var placed []*placement.PlacedPiece
	for i, c := range s.Commands {
		p, err := a.step(c, clock)
		if err != nil {
			return placed, fmt.Errorf("command %d (%s): %w", i+1, c, err)
		}
		if p != nil {
			placed = append(placed, p)
		}
	}
	a.log.Info("script finished", "commands", s.Len(), "placed", len(placed))
	return placed, nil
}

func (a *App) step(c engine.Command, clock *scriptClock) (*placement.PlacedPiece, error) {
	switch c.Op {
	case engine.OpPlace:
		return a.Place(c.Kind, c.Coord)
	case engine.OpAllow:
		a.allow.Add(c.Coord)
	case engine.OpAllowDisk:
		a.allow.Add(hex.Disk(c.Radius)...)
	case engine.OpTool:
		a.SelectTool(c.Tool)
	case engine.OpMove:
		a.PointerMove(picking.Event{Type: picking.MouseMove, ClientX: c.X, ClientY: c.Y})
	case engine.OpTouch:
		a.PointerMove(picking.Event{
			Type:    picking.TouchMove,
			Touches: []picking.Touch{{ClientX: c.X, ClientY: c.Y}},
		})
	case engine.OpClick:
		return a.Commit(picking.Event{Type: picking.MouseClick, ClientX: c.X, ClientY: c.Y})
	case engine.OpRelease:
		return a.Commit(picking.Event{Type: picking.TouchEnd})
	case engine.OpWait:
		clock.t = clock.t.Add(c.Wait)
	case engine.OpClear:
		a.Clear()
	default:
		return nil, fmt.Errorf("unknown op %v", c.Op)
	}
	return nil, nil
}
