package models

import "strings"

// BodyPart is an anatomical muscle-group tag used to filter exercises.
type BodyPart string

const (
	Abs        BodyPart = "abs"
	Obliques   BodyPart = "obliques"
	Biceps     BodyPart = "biceps"
	Triceps    BodyPart = "triceps"
	Forearms   BodyPart = "forearms"
	Chest      BodyPart = "chest"
	Shoulders  BodyPart = "shoulders"
	Lats       BodyPart = "lats"
	Traps      BodyPart = "traps"
	Rhomboids  BodyPart = "rhomboids"
	LowerBack  BodyPart = "lowerback"
	Quads      BodyPart = "quads"
	Hamstrings BodyPart = "hamstrings"
	Glutes     BodyPart = "glutes"
	Calves     BodyPart = "calves"
)

// AllBodyParts lists every selectable body part in display order.
var AllBodyParts = []BodyPart{
	Abs, Obliques, Biceps, Triceps, Forearms, Chest, Shoulders,
	Lats, Traps, Rhomboids, LowerBack, Quads, Hamstrings, Glutes, Calves,
}

var validBodyParts = func() map[BodyPart]bool {
	m := make(map[BodyPart]bool, len(AllBodyParts))
	for _, bp := range AllBodyParts {
		m[bp] = true
	}
	return m
}()

// backConstituents is what the compound alias "back" expands to.
var backConstituents = []BodyPart{Lats, Traps, Rhomboids}

// ParseBodyPart parses a raw body-part string. The second return is false
// for anything that is not a known body part. "back" is not itself a body
// part; callers normalizing user or model text go through NormalizeBodyParts.
func ParseBodyPart(raw string) (BodyPart, bool) {
	bp := BodyPart(strings.ToLower(strings.TrimSpace(raw)))
	return bp, validBodyParts[bp]
}

// NormalizeBodyParts converts raw body-part strings to BodyPart values,
// expanding the compound alias "back" to lats, traps and rhomboids.
// Unknown strings are dropped.
func NormalizeBodyParts(raw []string) []BodyPart {
	out := make([]BodyPart, 0, len(raw))
	for _, r := range raw {
		if strings.EqualFold(strings.TrimSpace(r), "back") {
			out = append(out, backConstituents...)
			continue
		}
		if bp, ok := ParseBodyPart(r); ok {
			out = append(out, bp)
		}
	}
	return out
}

// DisplayName returns the anatomical display form used in prompt text.
func (bp BodyPart) DisplayName() string {
	switch bp {
	case Lats:
		return "latissimus dorsi"
	case Traps:
		return "trapezius"
	case LowerBack:
		return "lower back"
	default:
		return string(bp)
	}
}
