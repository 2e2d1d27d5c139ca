package validation

import (
	"context"
	"testing"
	"time"

	"cortex/internal/core"
)

type fakeFileChecker struct {
	exists map[string]bool
}

func (f fakeFileChecker) Check(_ context.Context, path string) (FileInfo, bool, error) {
	return FileInfo{}, f.exists[path], nil
}

type erroringFileChecker struct{}

func (erroringFileChecker) Check(_ context.Context, path string) (FileInfo, bool, error) {
	return FileInfo{}, false, errBoom
}

type erroringPatternChecker struct{}

func (erroringPatternChecker) StillExists(_ context.Context, pattern string) (bool, error) {
	return false, errBoom
}

var errBoom = &core.ValidationError{Dimension: "test", Reason: "boom"}

func TestValidateWithContextNoLinksPassesCitation(t *testing.T) {
	e := &Engine{Weights: DefaultWeights()}
	m := &core.Memory{ID: "m1", Confidence: 1.0}
	result, err := e.ValidateBasic(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DimensionScores.Citation != 1.0 {
		t.Fatalf("expected citation score 1.0 with no links, got %v", result.DimensionScores.Citation)
	}
}

func TestValidateWithContextFlagsMissingFile(t *testing.T) {
	e := &Engine{Weights: DefaultWeights(), Files: fakeFileChecker{exists: map[string]bool{}}}
	m := &core.Memory{ID: "m1", Confidence: 1.0, LinkedFiles: []core.FileLink{{Path: "gone.go"}}}
	result, err := e.ValidateBasic(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DimensionScores.Citation != 0 {
		t.Fatalf("expected citation score 0 for missing file, got %v", result.DimensionScores.Citation)
	}
	foundFlag := false
	for _, h := range result.HealingActions {
		if _, ok := h.(Flag); ok {
			foundFlag = true
		}
	}
	if !foundFlag {
		t.Fatalf("expected a Flag healing action for the missing file")
	}
}

func TestValidateWithContextExpiredValidUntilArchives(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	m := &core.Memory{ID: "m1", Confidence: 1.0, ValidUntil: &past}
	e := &Engine{Weights: DefaultWeights()}
	result, err := e.ValidateWithContext(context.Background(), m, Context{Now: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DimensionScores.Temporal != 0 {
		t.Fatalf("expected temporal score 0 for expired memory, got %v", result.DimensionScores.Temporal)
	}
	foundArchival := false
	for _, h := range result.HealingActions {
		if _, ok := h.(Archival); ok {
			foundArchival = true
		}
	}
	if !foundArchival {
		t.Fatalf("expected an Archival healing action")
	}
}

func TestOverallScoreBelowThresholdFails(t *testing.T) {
	e := &Engine{Weights: DefaultWeights(), Files: fakeFileChecker{exists: map[string]bool{}}, Patterns: erroringPatternChecker{}}
	m := &core.Memory{
		ID:         "m1",
		Confidence: 1.0,
		LinkedFiles: []core.FileLink{{Path: "gone.go"}},
		LinkedPatterns: []string{"p1"},
		ValidUntil: timePtr(time.Now().Add(-time.Hour)),
	}
	result, err := e.ValidateWithContext(context.Background(), m, Context{Now: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed {
		t.Fatalf("expected overall validation to fail, got score %v", result.OverallScore)
	}
}

func TestValidateWithContextMissingFileCheckerErrors(t *testing.T) {
	e := &Engine{Weights: DefaultWeights()}
	m := &core.Memory{ID: "m1", Confidence: 1.0, LinkedFiles: []core.FileLink{{Path: "a.go"}}}
	_, err := e.ValidateBasic(context.Background(), m)
	if err == nil {
		t.Fatalf("expected error when no file checker is configured")
	}
	var verr *core.ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("expected a *core.ValidationError, got %T: %v", err, err)
	}
}

func TestValidateWithContextFileCheckerErrorFlagsNotAborts(t *testing.T) {
	e := &Engine{Weights: DefaultWeights(), Files: erroringFileChecker{}}
	m := &core.Memory{ID: "m1", Confidence: 1.0, LinkedFiles: []core.FileLink{{Path: "a.go"}}}
	result, err := e.ValidateBasic(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error, checker failure should not abort validation: %v", err)
	}
	if result.DimensionScores.Citation != 0 {
		t.Fatalf("expected citation score 0 for a failed check, got %v", result.DimensionScores.Citation)
	}
	foundFlag := false
	for _, h := range result.HealingActions {
		if _, ok := h.(Flag); ok {
			foundFlag = true
		}
	}
	if !foundFlag {
		t.Fatalf("expected a Flag healing action for the checker error")
	}
}

func TestValidateWithContextMissingPatternCheckerErrors(t *testing.T) {
	e := &Engine{Weights: DefaultWeights()}
	m := &core.Memory{ID: "m1", Confidence: 1.0, LinkedPatterns: []string{"p1"}}
	_, err := e.ValidateBasic(context.Background(), m)
	if err == nil {
		t.Fatalf("expected error when no pattern checker is configured")
	}
}

func TestValidateWithContextPatternCheckerErrorFlagsNotAborts(t *testing.T) {
	e := &Engine{Weights: DefaultWeights(), Patterns: erroringPatternChecker{}}
	m := &core.Memory{ID: "m1", Confidence: 1.0, LinkedPatterns: []string{"p1"}}
	result, err := e.ValidateBasic(context.Background(), m)
	if err != nil {
		t.Fatalf("unexpected error, checker failure should not abort validation: %v", err)
	}
	if result.DimensionScores.Pattern != 0 {
		t.Fatalf("expected pattern score 0 for a failed check, got %v", result.DimensionScores.Pattern)
	}
	foundFlag := false
	for _, h := range result.HealingActions {
		if _, ok := h.(Flag); ok {
			foundFlag = true
		}
	}
	if !foundFlag {
		t.Fatalf("expected a Flag healing action for the checker error")
	}
}

func asValidationError(err error, target **core.ValidationError) bool {
	ve, ok := err.(*core.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

func timePtr(t time.Time) *time.Time { return &t }
