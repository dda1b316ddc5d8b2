// Package catalog holds the compiled-in combo registry.
package catalog

import "github.com/verte-zerg/combodash/internal/model"

const (
	u = model.Up
	d = model.Down
	l = model.Left
	r = model.Right
)

func def(id, name string, cat model.Category, icon string, seq ...model.Direction) model.SequenceDef {
	return model.SequenceDef{
		ID:       id,
		Name:     name,
		Category: cat,
		Sequence: seq,
		Tier:     model.TierForLength(len(seq)),
		IconRef:  icon,
	}
}

var sequences = []model.SequenceDef{
	// Basics: single and double taps.
	def("rising-jab", "Rising Jab", model.CategoryBasics, "jab", u, u),
	def("low-sweep", "Low Sweep", model.CategoryBasics, "sweep", d, r),
	def("side-step", "Side Step", model.CategoryBasics, "step", l, r),
	def("drop-kick", "Drop Kick", model.CategoryBasics, "kick", d, d, r),
	def("guard-break", "Guard Break", model.CategoryBasics, "guard", u, d),
	def("back-dash", "Back Dash", model.CategoryBasics, "dash", l, l),

	// Quarter circles.
	def("quarter-forward", "Quarter Forward", model.CategoryQuarters, "qcf", d, r, r),
	def("quarter-back", "Quarter Back", model.CategoryQuarters, "qcb", d, l, l),
	def("rising-quarter", "Rising Quarter", model.CategoryQuarters, "rqc", d, r, u),
	def("double-quarter", "Double Quarter", model.CategoryQuarters, "dqc", d, r, d, r),
	def("quarter-storm", "Quarter Storm", model.CategoryQuarters, "storm", d, r, d, l),

	// Half circles.
	def("half-forward", "Half Forward", model.CategoryHalves, "hcf", l, d, r),
	def("half-back", "Half Back", model.CategoryHalves, "hcb", r, d, l),
	def("crescent-arc", "Crescent Arc", model.CategoryHalves, "arc", l, d, r, u),
	def("reverse-crescent", "Reverse Crescent", model.CategoryHalves, "rarc", r, d, l, u),
	def("full-moon", "Full Moon", model.CategoryHalves, "moon", l, d, r, u, l),

	// Charge motions.
	def("sonic-charge", "Sonic Charge", model.CategoryCharges, "sonic", l, l, r),
	def("flash-charge", "Flash Charge", model.CategoryCharges, "flash", d, d, u),
	def("delta-charge", "Delta Charge", model.CategoryCharges, "delta", l, l, r, u),
	def("anchor-charge", "Anchor Charge", model.CategoryCharges, "anchor", d, d, u, r),
	def("twin-charge", "Twin Charge", model.CategoryCharges, "twin", l, l, r, r, u),

	// Doubled inputs.
	def("double-tap", "Double Tap", model.CategoryDoubles, "tap", r, r),
	def("stutter-step", "Stutter Step", model.CategoryDoubles, "stutter", l, l, d, d),
	def("hammer-fall", "Hammer Fall", model.CategoryDoubles, "hammer", u, u, d, d),
	def("piston-rush", "Piston Rush", model.CategoryDoubles, "piston", r, r, l, l, r),
	def("echo-drive", "Echo Drive", model.CategoryDoubles, "echo", u, u, r, r, d, d),

	// Zigzags.
	def("lightning-z", "Lightning Z", model.CategoryZigzags, "bolt", r, d, r),
	def("serpent-weave", "Serpent Weave", model.CategoryZigzags, "serpent", l, u, r, d),
	def("saw-tooth", "Saw Tooth", model.CategoryZigzags, "saw", u, r, u, r),
	def("thunder-stitch", "Thunder Stitch", model.CategoryZigzags, "stitch", l, d, r, u, l),
	def("cyclone-weave", "Cyclone Weave", model.CategoryZigzags, "cyclone", u, l, d, r, u, l),

	// Marathons: long chains.
	def("gauntlet", "Gauntlet", model.CategoryMarathons, "gauntlet", u, d, l, r, u, d),
	def("iron-road", "Iron Road", model.CategoryMarathons, "road", r, r, d, d, l, l, u),
	def("endurance-loop", "Endurance Loop", model.CategoryMarathons, "loop", d, r, u, l, d, r, u, l),
	def("pilgrimage", "Pilgrimage", model.CategoryMarathons, "pilgrim", u, u, r, d, d, l, u, r),
	def("century-march", "Century March", model.CategoryMarathons, "march", l, r, l, r, u, d, u, d, r),

	// Secrets.
	def("konami-classic", "Konami Classic", model.CategorySecrets, "konami", u, u, d, d, l, r, l, r),
	def("mirror-code", "Mirror Code", model.CategorySecrets, "mirror", r, l, r, l, d, u),
	def("phantom-input", "Phantom Input", model.CategorySecrets, "phantom", d, u, d, u, l, r),
	def("final-cipher", "Final Cipher", model.CategorySecrets, "cipher", u, r, d, l, u, r, d),
}

var byID = func() map[string]model.SequenceDef {
	m := make(map[string]model.SequenceDef, len(sequences))
	for _, s := range sequences {
		m[s.ID] = s
	}
	return m
}()

// All returns every catalog sequence in declaration order.
func All() []model.SequenceDef {
	out := make([]model.SequenceDef, len(sequences))
	copy(out, sequences)
	return out
}

// ByID looks up one sequence. Unknown ids report ok=false.
func ByID(id string) (model.SequenceDef, bool) {
	s, ok := byID[id]
	return s, ok
}

// ByCategory returns the sequences of one category in declaration order.
func ByCategory(cat model.Category) []model.SequenceDef {
	var out []model.SequenceDef
	for _, s := range sequences {
		if s.Category == cat {
			out = append(out, s)
		}
	}
	return out
}

// Categories lists every category in catalog order.
func Categories() []model.Category {
	return []model.Category{
		model.CategoryBasics,
		model.CategoryQuarters,
		model.CategoryHalves,
		model.CategoryCharges,
		model.CategoryDoubles,
		model.CategoryZigzags,
		model.CategoryMarathons,
		model.CategorySecrets,
	}
}
