// Package contradiction implements pairwise contradiction detection and
// confidence propagation (C8), grounded on the weighted-factor scoring
// style of the confidence engine in the example pack's intelligence
// package, adapted from scoring a single memory to comparing a pair.
package contradiction

import (
	"strings"

	"cortex/internal/core"
)

// Type tags the strength of a detected contradiction.
type Type string

const (
	Direct       Type = "direct"
	Partial      Type = "partial"
	Supersession Type = "supersession"
)

// Mass is the confidence-delta magnitude a contradiction of this type
// seeds into propagation, per spec.md §4.5.
func Mass(t Type) float64 {
	switch t {
	case Direct:
		return 0.3
	case Partial:
		return 0.15
	case Supersession:
		return 0.5
	default:
		return 0
	}
}

// Detector is one pairwise contradiction rule. The engine runs every
// registered detector and returns the strongest hit.
type Detector interface {
	Detect(a, b *core.Memory) (Type, bool)
}

// Engine runs a composable, extensible list of detectors against a pair
// of memories.
type Engine struct {
	Detectors []Detector
}

// NewEngine returns an engine with the built-in detectors.
func NewEngine() *Engine {
	return &Engine{Detectors: []Detector{
		SupersessionDetector{},
		TemporalSupersessionDetector{},
		DirectOppositionDetector{},
		PolarTagDetector{},
	}}
}

// Detect runs every detector and returns the strongest contradiction
// found, if any.
func (e *Engine) Detect(a, b *core.Memory) (Type, bool) {
	var best Type
	found := false
	for _, d := range e.Detectors {
		if t, ok := d.Detect(a, b); ok {
			if !found || Mass(t) > Mass(best) {
				best = t
				found = true
			}
		}
	}
	return best, found
}

// SupersessionDetector fires when one memory explicitly supersedes the
// other via Memory.Supersedes/SupersededBy.
type SupersessionDetector struct{}

func (SupersessionDetector) Detect(a, b *core.Memory) (Type, bool) {
	if a.Supersedes != nil && *a.Supersedes == b.ID {
		return Supersession, true
	}
	if b.Supersedes != nil && *b.Supersedes == a.ID {
		return Supersession, true
	}
	if a.SupersededBy != nil && *a.SupersededBy == b.ID {
		return Supersession, true
	}
	if b.SupersededBy != nil && *b.SupersededBy == a.ID {
		return Supersession, true
	}
	return "", false
}

// TemporalSupersessionDetector fires when two memories concern the same
// subject and one's valid_until precedes the other's valid_time: the
// earlier fact had already stopped holding by the time the later one
// started, so the later memory supersedes the earlier one (spec.md §4.6).
type TemporalSupersessionDetector struct{}

func (TemporalSupersessionDetector) Detect(a, b *core.Memory) (Type, bool) {
	if !shareSubject(a, b) {
		return "", false
	}
	if a.ValidUntil != nil && !a.ValidUntil.After(b.ValidTime) {
		return Supersession, true
	}
	if b.ValidUntil != nil && !b.ValidUntil.After(a.ValidTime) {
		return Supersession, true
	}
	return "", false
}

// absoluteMarkers are words that turn a statement into a strong claim;
// two memories on the same subject carrying opposite polarity with one
// of these markers are a direct contradiction rather than a partial one.
var absoluteMarkers = []string{"always", "never", "must", "required", "forbidden"}

// DirectOppositionDetector looks for absolute-statement opposition: the
// same linked file/pattern/tag subject, with negation polarity flipped
// and at least one absolute marker present.
type DirectOppositionDetector struct{}

func (DirectOppositionDetector) Detect(a, b *core.Memory) (Type, bool) {
	if !shareSubject(a, b) {
		return "", false
	}
	aText := strings.ToLower(a.Summary)
	bText := strings.ToLower(b.Summary)
	if !hasAbsoluteMarker(aText) && !hasAbsoluteMarker(bText) {
		return "", false
	}
	if isNegated(aText) == isNegated(bText) {
		return "", false
	}
	return Direct, true
}

func hasAbsoluteMarker(text string) bool {
	for _, marker := range absoluteMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func isNegated(text string) bool {
	return strings.Contains(text, "not ") || strings.Contains(text, "never") || strings.Contains(text, "n't ")
}

// PolarTagDetector fires when both memories share a subject but carry
// tags from a known polar pair (e.g. "deprecated" vs "recommended").
type PolarTagDetector struct{}

var polarPairs = [][2]string{
	{"deprecated", "recommended"},
	{"unsafe", "safe"},
	{"broken", "working"},
	{"rejected", "approved"},
}

func (PolarTagDetector) Detect(a, b *core.Memory) (Type, bool) {
	if !shareSubject(a, b) {
		return "", false
	}
	for _, pair := range polarPairs {
		if hasTag(a, pair[0]) && hasTag(b, pair[1]) {
			return Partial, true
		}
		if hasTag(a, pair[1]) && hasTag(b, pair[0]) {
			return Partial, true
		}
	}
	return "", false
}

func hasTag(m *core.Memory, tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// shareSubject is true when two memories reference a common file,
// pattern, or constraint, meaning they can plausibly be about the same
// fact. Memories about unrelated subjects never contradict.
func shareSubject(a, b *core.Memory) bool {
	for _, fa := range a.LinkedFiles {
		for _, fb := range b.LinkedFiles {
			if fa.Path == fb.Path {
				return true
			}
		}
	}
	for _, pa := range a.LinkedPatterns {
		for _, pb := range b.LinkedPatterns {
			if pa == pb {
				return true
			}
		}
	}
	for _, ca := range a.LinkedConstraints {
		for _, cb := range b.LinkedConstraints {
			if ca == cb {
				return true
			}
		}
	}
	return false
}
