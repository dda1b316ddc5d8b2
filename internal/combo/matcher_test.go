package combo

import (
	"testing"

	"github.com/verte-zerg/combodash/internal/model"
)

func TestExactSequenceCompletes(t *testing.T) {
	seq := []model.Direction{model.Up, model.Down, model.Left, model.Right}
	var m Matcher
	m.SetSequence(seq)

	steps := 0
	completes := 0
	for _, dir := range seq {
		ev := m.Feed(dir)
		switch ev.Kind {
		case EventCorrectStep:
			steps++
		case EventComplete:
			steps++
			completes++
			if ev.Length != len(seq) {
				t.Fatalf("complete length %d, expected %d", ev.Length, len(seq))
			}
		default:
			t.Fatalf("unexpected event kind %d", ev.Kind)
		}
	}
	if steps != len(seq) || completes != 1 {
		t.Fatalf("expected %d steps and 1 complete, got %d/%d", len(seq), steps, completes)
	}
	if m.Position() != 0 {
		t.Fatalf("position must reset after completion, got %d", m.Position())
	}
}

func TestMissResetsPosition(t *testing.T) {
	seq := []model.Direction{model.Down, model.Right, model.Right}
	var m Matcher
	m.SetSequence(seq)

	m.Feed(model.Down)
	ev := m.Feed(model.Left)
	if ev.Kind != EventMiss {
		t.Fatalf("expected miss, got kind %d", ev.Kind)
	}
	if ev.Expected != model.Right || ev.Dir != model.Left {
		t.Fatalf("unexpected miss payload: %+v", ev)
	}
	if ev.Position != 1 {
		t.Fatalf("miss at position 1, reported %d", ev.Position)
	}
	if m.Position() != 0 {
		t.Fatalf("position must reset after miss, got %d", m.Position())
	}
}

func TestNoActiveSequenceIgnoresInput(t *testing.T) {
	var m Matcher
	if ev := m.Feed(model.Up); ev.Kind != EventIgnored {
		t.Fatalf("expected ignored, got kind %d", ev.Kind)
	}
	m.SetSequence(nil)
	if ev := m.Feed(model.Down); ev.Kind != EventIgnored {
		t.Fatalf("expected ignored on empty sequence, got kind %d", ev.Kind)
	}
}

func TestSetSequenceResetsProgress(t *testing.T) {
	var m Matcher
	m.SetSequence([]model.Direction{model.Up, model.Up, model.Up})
	m.Feed(model.Up)
	m.Feed(model.Up)
	m.SetSequence([]model.Direction{model.Left, model.Right})
	if m.Position() != 0 {
		t.Fatalf("new sequence must reset position, got %d", m.Position())
	}
	if ev := m.Feed(model.Left); ev.Kind != EventCorrectStep {
		t.Fatalf("expected correct step on new sequence, got kind %d", ev.Kind)
	}
}

func TestSingleStepSequence(t *testing.T) {
	var m Matcher
	m.SetSequence([]model.Direction{model.Right})
	if ev := m.Feed(model.Right); ev.Kind != EventComplete {
		t.Fatalf("expected immediate completion, got kind %d", ev.Kind)
	}
}
