// Package combo implements the sequence-matching state machine.
package combo

import "github.com/verte-zerg/combodash/internal/model"

// EventKind discriminates matcher outcomes.
type EventKind int

// Matcher outcomes.
const (
	EventIgnored EventKind = iota
	EventCorrectStep
	EventComplete
	EventMiss
)

// Event is the result of feeding one direction to the matcher.
type Event struct {
	Kind     EventKind
	Dir      model.Direction
	Position int
	Expected model.Direction
	Length   int
}

// Matcher tracks the position inside the active sequence. Position is
// always in [0, len(sequence)]; a completed match resets it to 0.
type Matcher struct {
	sequence []model.Direction
	position int
}

// SetSequence installs a new active sequence and resets the position.
func (m *Matcher) SetSequence(seq []model.Direction) {
	m.sequence = seq
	m.position = 0
}

// Position returns the current match position.
func (m *Matcher) Position() int {
	return m.position
}

// Feed consumes one direction. A correct step advances the position;
// the final step of a sequence yields EventComplete and resets the
// position. A wrong direction yields EventMiss and resets the position.
// With no active sequence the input is ignored.
func (m *Matcher) Feed(dir model.Direction) Event {
	if len(m.sequence) == 0 || m.position >= len(m.sequence) {
		return Event{Kind: EventIgnored, Dir: dir}
	}
	expected := m.sequence[m.position]
	if dir != expected {
		pos := m.position
		m.position = 0
		return Event{Kind: EventMiss, Dir: dir, Position: pos, Expected: expected}
	}
	pos := m.position
	m.position++
	if m.position == len(m.sequence) {
		m.position = 0
		return Event{Kind: EventComplete, Dir: dir, Position: pos, Length: len(m.sequence)}
	}
	return Event{Kind: EventCorrectStep, Dir: dir, Position: pos}
}
