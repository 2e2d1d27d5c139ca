package decay

import "cortex/internal/core"

// ReclassificationSignals aggregates the usage evidence the
// reclassification engine weighs, grounded on the original
// implementation's cortex-reclassification signal bundle.
type ReclassificationSignals struct {
	AccessFrequency     float64 // accesses per day, normalized externally
	CorroborationCount  int
	AgeDays             float64
	UserSetCritical     bool
}

// CompositeScore blends the signals into a single [0,1]-ish score used
// by the upgrade/downgrade rules. Access frequency and corroboration
// push the score up; age alone pulls it down slightly to avoid
// perpetually upgrading very old, rarely-touched memories.
func (s ReclassificationSignals) CompositeScore() float64 {
	freqTerm := clamp01(s.AccessFrequency)
	corroborationTerm := clamp01(float64(s.CorroborationCount) / 5.0)
	ageDamping := clamp01(1 - s.AgeDays/365.0)
	score := 0.5*freqTerm + 0.3*corroborationTerm + 0.2*ageDamping
	return clamp01(score)
}

// ReclassificationRule names which direction a reclassification moves
// importance, and why.
type ReclassificationRule struct {
	Name           string
	FromImportance core.Importance
	ToImportance   core.Importance
	Reason         string
}

// upgradeThreshold / downgradeThreshold mirror the original
// implementation's reclassification_test.rs constants.
const (
	upgradeThreshold   = 0.7
	downgradeThreshold = 0.5
	cooldown           = 30 // days
)

// FindApplicableRule returns the rule that fires for the given current
// importance and signals, if any. Only one rule fires per evaluation:
// upgrade from Low to Normal above the upgrade threshold, or downgrade
// from Critical to High below the downgrade threshold.
func FindApplicableRule(current core.Importance, signals ReclassificationSignals) (ReclassificationRule, bool) {
	score := signals.CompositeScore()
	if current == core.ImportanceLow && score > upgradeThreshold {
		return ReclassificationRule{
			Name: "usage-upgrade", FromImportance: core.ImportanceLow, ToImportance: core.ImportanceNormal,
			Reason: "sustained access and corroboration exceed the upgrade threshold",
		}, true
	}
	if current == core.ImportanceCritical && score < downgradeThreshold {
		return ReclassificationRule{
			Name: "usage-downgrade", FromImportance: core.ImportanceCritical, ToImportance: core.ImportanceHigh,
			Reason: "usage signals fell below the downgrade threshold",
		}, true
	}
	return ReclassificationRule{}, false
}

// IsReclassificationAllowed enforces the two safeguards from the
// original implementation: a human-pinned Critical memory is never
// auto-demoted, and a memory reclassified within the last 30 days is on
// cooldown.
func IsReclassificationAllowed(signals ReclassificationSignals, lastReclassifiedDaysAgo *float64) bool {
	if signals.UserSetCritical {
		return false
	}
	if lastReclassifiedDaysAgo != nil && *lastReclassifiedDaysAgo < cooldown {
		return false
	}
	return true
}

// ReclassificationDecision is one outcome of evaluating a single memory,
// written back as a provenance hop (action=CorrectedBy) so every
// automatic reclassification is auditable.
type ReclassificationDecision struct {
	MemoryID      string
	OldImportance core.Importance
	NewImportance core.Importance
	Reason        string
}

// Evaluate runs FindApplicableRule guarded by IsReclassificationAllowed
// and returns the decision, or ok=false if no reclassification applies.
func Evaluate(m *core.Memory, signals ReclassificationSignals, lastReclassifiedDaysAgo *float64) (ReclassificationDecision, bool) {
	if !IsReclassificationAllowed(signals, lastReclassifiedDaysAgo) {
		return ReclassificationDecision{}, false
	}
	rule, ok := FindApplicableRule(m.Importance, signals)
	if !ok {
		return ReclassificationDecision{}, false
	}
	return ReclassificationDecision{
		MemoryID:      m.ID,
		OldImportance: rule.FromImportance,
		NewImportance: rule.ToImportance,
		Reason:        rule.Reason,
	}, true
}

// RunFullPass evaluates every candidate memory and returns every
// resulting decision. The caller is responsible for persisting each
// decision (applying the importance change and appending a provenance
// hop) and for supplying per-memory cooldown state.
func RunFullPass(candidates []*core.Memory, signalsFor func(*core.Memory) ReclassificationSignals, lastReclassifiedFor func(*core.Memory) *float64) []ReclassificationDecision {
	decisions := make([]ReclassificationDecision, 0)
	for _, m := range candidates {
		if m.Archived {
			continue
		}
		if d, ok := Evaluate(m, signalsFor(m), lastReclassifiedFor(m)); ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}
