// Package input translates keyboard and gamepad events into directions.
package input

import (
	"time"

	"github.com/verte-zerg/combodash/internal/model"
)

// Bindings maps key names (bubbletea msg.String() values) to directions.
type Bindings map[string]model.Direction

// DefaultBindings covers WASD and the arrow keys.
func DefaultBindings() Bindings {
	return Bindings{
		"w":     model.Up,
		"a":     model.Left,
		"s":     model.Down,
		"d":     model.Right,
		"up":    model.Up,
		"left":  model.Left,
		"down":  model.Down,
		"right": model.Right,
	}
}

// Resolve maps a key name to its direction, if bound.
func (b Bindings) Resolve(key string) (model.Direction, bool) {
	dir, ok := b[key]
	return dir, ok
}

// Merge overlays user bindings on top of b. Unknown direction names in
// the overlay are skipped rather than rejected.
func (b Bindings) Merge(overlay map[string]string) Bindings {
	out := make(Bindings, len(b)+len(overlay))
	for k, v := range b {
		out[k] = v
	}
	for key, name := range overlay {
		if dir, ok := model.ParseDirection(name); ok {
			out[key] = dir
		}
	}
	return out
}

// EdgeFilter drops key-repeat events: only the first activation of a
// direction inside the repeat window passes through.
type EdgeFilter struct {
	window time.Duration
	last   map[model.Direction]time.Time
}

// NewEdgeFilter returns a filter with the given repeat window.
func NewEdgeFilter(window time.Duration) *EdgeFilter {
	return &EdgeFilter{
		window: window,
		last:   map[model.Direction]time.Time{},
	}
}

// Pass reports whether the event at now is a first edge for dir.
func (f *EdgeFilter) Pass(dir model.Direction, now time.Time) bool {
	if prev, ok := f.last[dir]; ok && now.Sub(prev) < f.window {
		f.last[dir] = now
		return false
	}
	f.last[dir] = now
	return true
}

// Reset clears the filter state, releasing all held directions.
func (f *EdgeFilter) Reset() {
	f.last = map[model.Direction]time.Time{}
}
