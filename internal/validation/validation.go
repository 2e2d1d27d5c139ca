// Package validation implements the four-dimension validation engine
// (C7): citation, temporal, pattern alignment, and contradiction, each
// scored independently and combined into a weighted overall score.
package validation

import (
	"context"
	"math"
	"time"

	"cortex/internal/contradiction"
	"cortex/internal/core"
)

// FileInfo is what the external file checker capability returns for a
// linked file.
type FileInfo struct {
	ContentHash *string
	TotalLines  *int
}

// FileChecker, RenameDetector, and PatternChecker are the external
// capability sets spec.md §9 calls for: explicit function-contract
// bundles the owner swaps in at construction time, never a virtual
// method table.
type FileChecker interface {
	Check(ctx context.Context, path string) (FileInfo, bool, error)
}

type RenameDetector interface {
	DetectRename(ctx context.Context, oldPath string) (newPath string, found bool, err error)
}

type PatternChecker interface {
	StillExists(ctx context.Context, pattern string) (bool, error)
}

// HealingAction is a tagged variant the engine emits; a downstream
// executor applies them.
type HealingAction interface {
	healingActionTag() string
}

type Archival struct{}

func (Archival) healingActionTag() string { return "Archival" }

type UpdateCitation struct {
	OldPath string
	NewPath string
}

func (UpdateCitation) healingActionTag() string { return "UpdateCitation" }

type ContentHashDrift struct {
	Path string
}

func (ContentHashDrift) healingActionTag() string { return "ContentHashDrift" }

type ConfidenceAdjust struct {
	Delta      *float64
	BlendNew   *float64
	BlendWeight *float64
}

func (ConfidenceAdjust) healingActionTag() string { return "ConfidenceAdjust" }

type FlagSeverity string

const (
	SeverityLow    FlagSeverity = "low"
	SeverityMedium FlagSeverity = "medium"
	SeverityHigh   FlagSeverity = "high"
)

type Flag struct {
	Severity FlagSeverity
}

func (Flag) healingActionTag() string { return "Flag" }

// DimensionScores holds the four independent dimension scores.
type DimensionScores struct {
	Citation      float64
	Temporal      float64
	Pattern       float64
	Contradiction float64
}

// ValidationResult is the engine's output for one memory.
type ValidationResult struct {
	MemoryID        string
	OverallScore    float64
	Passed          bool
	DimensionScores DimensionScores
	HealingActions  []HealingAction
	ReviewFlag      *FlagSeverity
}

// Weights configures the per-dimension contribution to the overall
// score; defaults are equal weighting.
type Weights struct {
	Citation      float64
	Temporal      float64
	Pattern       float64
	Contradiction float64
}

func DefaultWeights() Weights {
	return Weights{Citation: 0.25, Temporal: 0.25, Pattern: 0.25, Contradiction: 0.25}
}

// PassThreshold is the default overall-score threshold for Passed.
const PassThreshold = 0.5

// ConsensusBoost is added to a dimension score for memories in a
// consensus group, then clamped to 1.
const ConsensusBoost = 0.2

// Engine runs the four dimensions using the caller-supplied capability
// implementations.
type Engine struct {
	Files    FileChecker
	Renames  RenameDetector
	Patterns PatternChecker
	Weights  Weights
	Detector *contradiction.Engine
}

// Context carries per-evaluation signals: related memories, whether m
// belongs to a consensus group, and the evaluation time.
type Context struct {
	Now            time.Time
	Related        []*core.Memory
	InConsensus    bool
}

// ValidateBasic runs validation without contradiction evaluation against
// related memories (used when no related set is available yet).
func (e *Engine) ValidateBasic(ctx context.Context, m *core.Memory) (ValidationResult, error) {
	return e.ValidateWithContext(ctx, m, Context{Now: time.Now()})
}

// ValidateWithContext runs all four dimensions and combines them into an
// overall weighted score.
func (e *Engine) ValidateWithContext(ctx context.Context, m *core.Memory, vctx Context) (ValidationResult, error) {
	var healing []HealingAction

	citationScore, citationActions, err := e.scoreCitation(ctx, m)
	if err != nil {
		return ValidationResult{}, err
	}
	healing = append(healing, citationActions...)

	temporalScore, temporalActions := scoreTemporal(m, vctx.Now)
	healing = append(healing, temporalActions...)

	patternScore, patternActions, err := e.scorePattern(ctx, m)
	if err != nil {
		return ValidationResult{}, err
	}
	healing = append(healing, patternActions...)

	contradictionScore := e.scoreContradiction(m, vctx.Related)

	if vctx.InConsensus {
		contradictionScore = clamp01(contradictionScore + ConsensusBoost)
	}

	scores := DimensionScores{
		Citation:      citationScore,
		Temporal:      temporalScore,
		Pattern:       patternScore,
		Contradiction: contradictionScore,
	}

	overall := weightedMean(scores, e.Weights)
	result := ValidationResult{
		MemoryID:        m.ID,
		OverallScore:    overall,
		Passed:          overall >= PassThreshold,
		DimensionScores: scores,
		HealingActions:  healing,
	}
	return result, nil
}

func weightedMean(s DimensionScores, w Weights) float64 {
	total := w.Citation + w.Temporal + w.Pattern + w.Contradiction
	if total == 0 {
		return 0
	}
	sum := s.Citation*w.Citation + s.Temporal*w.Temporal + s.Pattern*w.Pattern + s.Contradiction*w.Contradiction
	return sum / total
}

func (e *Engine) scoreCitation(ctx context.Context, m *core.Memory) (float64, []HealingAction, error) {
	if len(m.LinkedFiles) == 0 {
		return 1.0, nil, nil
	}
	var healing []HealingAction
	resolved := 0
	for _, link := range m.LinkedFiles {
		if e.Files == nil {
			return 0, nil, &core.ValidationError{Dimension: "citation", Reason: "no file checker configured"}
		}
		info, ok, err := e.Files.Check(ctx, link.Path)
		if err != nil {
			healing = append(healing, Flag{Severity: SeverityMedium})
			continue
		}
		if !ok {
			if e.Renames != nil {
				if newPath, found, err := e.Renames.DetectRename(ctx, link.Path); err == nil && found {
					healing = append(healing, UpdateCitation{OldPath: link.Path, NewPath: newPath})
					continue
				}
			}
			healing = append(healing, Flag{Severity: SeverityMedium})
			continue
		}
		if info.ContentHash != nil && link.ContentHash != "" && *info.ContentHash != link.ContentHash {
			healing = append(healing, ContentHashDrift{Path: link.Path})
			continue
		}
		resolved++
	}
	return float64(resolved) / float64(len(m.LinkedFiles)), healing, nil
}

func scoreTemporal(m *core.Memory, now time.Time) (float64, []HealingAction) {
	if m.ValidUntil != nil && m.ValidUntil.Before(now) {
		return 0, []HealingAction{Archival{}}
	}
	if m.LastAccessed.IsZero() {
		return 1.0, nil
	}
	days := now.Sub(m.LastAccessed).Hours() / 24
	if days < 0 {
		days = 0
	}
	// Decay-weighted freshness: halves every 90 days, independent of the
	// decay engine's per-type half-life (a coarser, type-agnostic proxy
	// used only for the validation score).
	score := clamp01(math.Pow(0.5, days/90))
	return score, nil
}

func (e *Engine) scorePattern(ctx context.Context, m *core.Memory) (float64, []HealingAction, error) {
	if len(m.LinkedPatterns) == 0 {
		return 1.0, nil, nil
	}
	if e.Patterns == nil {
		return 0, nil, &core.ValidationError{Dimension: "pattern", Reason: "no pattern checker configured"}
	}
	var healing []HealingAction
	live := 0
	for _, p := range m.LinkedPatterns {
		ok, err := e.Patterns.StillExists(ctx, p)
		if err != nil {
			healing = append(healing, Flag{Severity: SeverityMedium})
			continue
		}
		if ok {
			live++
		}
	}
	return float64(live) / float64(len(m.LinkedPatterns)), healing, nil
}

func (e *Engine) scoreContradiction(m *core.Memory, related []*core.Memory) float64 {
	if e.Detector == nil || len(related) == 0 {
		return 1.0
	}
	total := 0
	contradicting := 0.0
	for _, r := range related {
		total++
		if ct, ok := e.Detector.Detect(m, r); ok {
			contradicting += contradiction.Mass(ct)
		}
	}
	if total == 0 {
		return 1.0
	}
	return clamp01(1 - contradicting/float64(total))
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
