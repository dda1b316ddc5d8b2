package input

import (
	"math"
	"time"

	"github.com/verte-zerg/combodash/internal/model"
)

// DefaultDeadzone is the stick magnitude below which input is noise.
const DefaultDeadzone = 0.3

// PadState is one polled snapshot of a gamepad.
type PadState struct {
	Connected bool
	DPadUp    bool
	DPadDown  bool
	DPadLeft  bool
	DPadRight bool
	StickX    float64
	StickY    float64
}

// PadReader supplies pad snapshots. Implementations wrap whatever
// backend is available; tests use a canned reader.
type PadReader interface {
	Poll() PadState
}

// stateDirection reduces a snapshot to at most one direction. D-pad
// buttons win over the stick; the stick picks its dominant axis beyond
// the deadzone.
func stateDirection(st PadState, deadzone float64) (model.Direction, bool) {
	if !st.Connected {
		return 0, false
	}
	switch {
	case st.DPadUp:
		return model.Up, true
	case st.DPadDown:
		return model.Down, true
	case st.DPadLeft:
		return model.Left, true
	case st.DPadRight:
		return model.Right, true
	}
	ax, ay := math.Abs(st.StickX), math.Abs(st.StickY)
	if ax <= deadzone && ay <= deadzone {
		return 0, false
	}
	if ax >= ay {
		if st.StickX < 0 {
			return model.Left, true
		}
		return model.Right, true
	}
	if st.StickY < 0 {
		return model.Up, true
	}
	return model.Down, true
}

// Poller scans a PadReader on a fixed tick and emits first-edge
// direction activations on Events. A held direction emits once and
// stays silent until released.
type Poller struct {
	reader   PadReader
	deadzone float64
	interval time.Duration

	events chan model.Direction
	done   chan struct{}
	closed chan struct{}
}

// NewPoller builds a poller. A deadzone outside (0, 1) falls back to
// the default.
func NewPoller(reader PadReader, deadzone float64, interval time.Duration) *Poller {
	if deadzone <= 0 || deadzone >= 1 {
		deadzone = DefaultDeadzone
	}
	return &Poller{
		reader:   reader,
		deadzone: deadzone,
		interval: interval,
		events:   make(chan model.Direction, 8),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// Events is the direction stream. It shares a consumer with the
// keyboard path; both feed the same matcher.
func (p *Poller) Events() <-chan model.Direction {
	return p.events
}

// Run polls until Stop. Call in its own goroutine.
func (p *Poller) Run() {
	defer close(p.closed)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var held bool
	var heldDir model.Direction
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			dir, active := stateDirection(p.reader.Poll(), p.deadzone)
			if !active {
				held = false
				continue
			}
			if held && dir == heldDir {
				continue
			}
			held = true
			heldDir = dir
			select {
			case p.events <- dir:
			default:
				// Consumer is behind; drop rather than block the poll.
			}
		}
	}
}

// Stop halts the poll loop and waits for it to exit, so no event is
// emitted after Stop returns.
func (p *Poller) Stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	<-p.closed
}
