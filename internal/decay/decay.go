// Package decay implements the multi-factor exponential decay engine
// (C6) and its companion reclassification pass, a feature supplemented
// from the original implementation's cortex-reclassification crate that
// the distilled specification omitted.
package decay

import (
	"math"
	"time"

	"cortex/internal/core"
)

// Context carries the external signals calculate_with_context needs
// beyond the memory itself.
type Context struct {
	Now                time.Time
	StaleCitationRatio float64 // [0,1]
	HasActivePatterns  bool
}

const usageRateConstant = 5.0 // k in the usage factor formula

// HalfLife returns the memory-type-specific base half-life. Core
// memories are exempt from decay (infinite half-life).
func HalfLife(t core.MemoryType) (time.Duration, bool) {
	switch t {
	case core.MemoryTypeCore:
		return 0, false // false => infinite
	case core.MemoryTypeTribal:
		return 365 * 24 * time.Hour, true
	case core.MemoryTypeSemantic:
		return 90 * 24 * time.Hour, true
	case core.MemoryTypeDecision:
		return 120 * 24 * time.Hour, true
	case core.MemoryTypeEpisodic:
		return 30 * 24 * time.Hour, true
	case core.MemoryTypeInsight:
		return 60 * 24 * time.Hour, true
	case core.MemoryTypePatternRationale:
		return 180 * 24 * time.Hour, true
	case core.MemoryTypeConversation:
		return 14 * 24 * time.Hour, true
	default:
		return 60 * 24 * time.Hour, true
	}
}

// AdaptiveHalfLife multiplies the base half-life by 1+log(1+access_count);
// access-rich memories decay slower. Core memories return (0, false),
// signaling infinite half-life.
func AdaptiveHalfLife(m *core.Memory) (time.Duration, bool) {
	base, finite := HalfLife(m.MemoryType)
	if !finite {
		return 0, false
	}
	factor := 1 + math.Log(1+float64(m.AccessCount))
	return time.Duration(float64(base) * factor), true
}

func importanceFactor(i core.Importance) float64 {
	switch i {
	case core.ImportanceLow:
		return 0.8
	case core.ImportanceNormal:
		return 1.0
	case core.ImportanceHigh:
		return 1.5
	case core.ImportanceCritical:
		return 2.0
	default:
		return 1.0
	}
}

func temporalFactor(m *core.Memory, ctx Context) float64 {
	halfLife, finite := AdaptiveHalfLife(m)
	if !finite {
		return 1.0
	}
	daysSinceAccess := ctx.Now.Sub(m.LastAccessed).Hours() / 24
	if daysSinceAccess < 0 {
		daysSinceAccess = 0
	}
	halfLifeDays := halfLife.Hours() / 24
	if halfLifeDays <= 0 {
		return 1.0
	}
	return math.Pow(0.5, daysSinceAccess/halfLifeDays)
}

func citationFactor(m *core.Memory, ctx Context) float64 {
	if len(m.LinkedFiles) == 0 {
		return 1.0
	}
	return 1 - 0.5*clamp01(ctx.StaleCitationRatio)
}

func usageFactor(m *core.Memory) float64 {
	return 1 + 0.5*(1-math.Exp(-float64(m.AccessCount)/usageRateConstant))
}

func patternFactor(ctx Context) float64 {
	if ctx.HasActivePatterns {
		return 1.3
	}
	return 1.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CalculateWithContext returns the memory's decayed confidence: its
// stored confidence times the product of the five factors in spec.md
// §4.4, clamped to [0,1].
func CalculateWithContext(m *core.Memory, ctx Context) float64 {
	product := temporalFactor(m, ctx) * citationFactor(m, ctx) * usageFactor(m) * importanceFactor(m.Importance) * patternFactor(ctx)
	return clamp01(product * m.Confidence)
}

// ArchivalThreshold is the default threshold below which a memory is
// flagged for archival.
const ArchivalThreshold = 0.15

// ArchivalDecision is the result of evaluating whether a memory should
// be archived given its decayed confidence.
type ArchivalDecision struct {
	MemoryID      string
	ShouldArchive bool
	Reason        string
}

// EvaluateArchival archives a memory when decayed confidence falls below
// threshold and it is not already archived. Already-archived memories
// are never re-archived.
func EvaluateArchival(m *core.Memory, decayed float64, threshold float64) ArchivalDecision {
	if m.Archived {
		return ArchivalDecision{MemoryID: m.ID, ShouldArchive: false, Reason: "already archived"}
	}
	if decayed < threshold {
		return ArchivalDecision{MemoryID: m.ID, ShouldArchive: true, Reason: "confidence decayed below threshold"}
	}
	return ArchivalDecision{MemoryID: m.ID, ShouldArchive: false, Reason: "confidence above threshold"}
}
