package core

import (
	"errors"
	"fmt"
)

// Sentinel errors used with errors.Is for coarse-grained matching.
var (
	ErrInvalidNamespace = errors.New("core: invalid namespace")
	ErrDuplicateID      = errors.New("core: duplicate id")
	ErrNotFound         = errors.New("core: not found")
)

// StorageError covers open/migrate failures, integrity check failures,
// busy timeouts, duplicate ids, foreign-key violations, and serialization
// errors from the storage engine (C5).
type StorageError struct {
	Op       string
	Reason   string
	Retryable bool
	Err      error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("storage: %s: %s", e.Op, e.Reason)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Code() string { return "storage_error" }

func NewDuplicateIDError(op, id string) *StorageError {
	return &StorageError{Op: op, Reason: "duplicate id " + id, Err: ErrDuplicateID}
}

func NewBusyError(op string) *StorageError {
	return &StorageError{Op: op, Reason: "writer or reader pool busy", Retryable: true}
}

// CrdtError covers causal-order violations on delta application.
type CrdtError struct {
	Expected string
	Found    string
}

func (e *CrdtError) Error() string {
	return fmt.Sprintf("crdt: causal order violation: expected %s, found %s", e.Expected, e.Found)
}

func (e *CrdtError) Code() string { return "causal_order_violation" }

// MultiAgentError covers cyclic dependencies, permission denial, and
// missing namespaces in the multi-agent surface (C4/C10).
type MultiAgentError struct {
	Kind   string // "cyclic_dependency" | "permission_denied" | "namespace_not_found"
	Edge   string
	NS     string
	Agent  string
	Perm   Permission
}

func (e *MultiAgentError) Error() string {
	switch e.Kind {
	case "cyclic_dependency":
		return fmt.Sprintf("multiagent: cyclic dependency: %s", e.Edge)
	case "permission_denied":
		return fmt.Sprintf("multiagent: permission denied: agent %s lacks %s on %s", e.Agent, e.Perm, e.NS)
	case "namespace_not_found":
		return fmt.Sprintf("multiagent: namespace not found: %s", e.NS)
	default:
		return "multiagent: error"
	}
}

func (e *MultiAgentError) Code() string { return "multiagent_" + e.Kind }

func NewCyclicDependencyError(edge string) *MultiAgentError {
	return &MultiAgentError{Kind: "cyclic_dependency", Edge: edge}
}

func NewPermissionDeniedError(ns, agent string, perm Permission) *MultiAgentError {
	return &MultiAgentError{Kind: "permission_denied", NS: ns, Agent: agent, Perm: perm}
}

func NewNamespaceNotFoundError(ns string) *MultiAgentError {
	return &MultiAgentError{Kind: "namespace_not_found", NS: ns}
}

// EmbeddingError covers the degradation chain's failure modes (C11).
type EmbeddingError struct {
	Kind     string // "provider_unavailable" | "inference_failed" | "dimension_mismatch"
	Provider string
	Reason   string
	Expected int
	Actual   int
	Err      error
}

func (e *EmbeddingError) Error() string {
	switch e.Kind {
	case "provider_unavailable":
		return fmt.Sprintf("embedding: provider unavailable: %s", e.Provider)
	case "inference_failed":
		return fmt.Sprintf("embedding: inference failed: %s", e.Reason)
	case "dimension_mismatch":
		return fmt.Sprintf("embedding: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	default:
		return "embedding: error"
	}
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

func (e *EmbeddingError) Code() string { return "embedding_" + e.Kind }

func NewProviderUnavailableError(provider string, cause error) *EmbeddingError {
	return &EmbeddingError{Kind: "provider_unavailable", Provider: provider, Err: cause}
}

func NewDimensionMismatchError(expected, actual int) *EmbeddingError {
	return &EmbeddingError{Kind: "dimension_mismatch", Expected: expected, Actual: actual}
}

// ValidationError is raised only when a dimension cannot be evaluated at
// all (e.g. a missing external callback); a failed score is never an error.
type ValidationError struct {
	Dimension string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s dimension unavailable: %s", e.Dimension, e.Reason)
}

func (e *ValidationError) Code() string { return "validation_error" }

// ConsolidationError is raised only for infrastructure failures; a gate
// rejection is a normal result with Passed=false, never an error.
type ConsolidationError struct {
	Reason string
	Err    error
}

func (e *ConsolidationError) Error() string {
	return fmt.Sprintf("consolidation: %s", e.Reason)
}

func (e *ConsolidationError) Unwrap() error { return e.Err }

func (e *ConsolidationError) Code() string { return "consolidation_error" }
