package merge

import (
	"time"

	"cortex/internal/core"
)

// FieldDelta is a tagged variant describing one change to a MemoryCRDT
// field, matching the wire tag list in spec.md §6 exactly.
type FieldDelta interface {
	fieldDeltaTag() string
}

type ContentUpdated struct {
	Value     core.TypedContent
	Timestamp time.Time
	AgentID   string
}

func (ContentUpdated) fieldDeltaTag() string { return "ContentUpdated" }

type SummaryUpdated struct {
	Value     string
	Timestamp time.Time
	AgentID   string
}

func (SummaryUpdated) fieldDeltaTag() string { return "SummaryUpdated" }

type ConfidenceBoosted struct {
	Value         float64
	MaxTimestamp  time.Time
}

func (ConfidenceBoosted) fieldDeltaTag() string { return "ConfidenceBoosted" }

type TagAdded struct {
	Tag       string
	UniqueTag UniqueTagRef
}

func (TagAdded) fieldDeltaTag() string { return "TagAdded" }

type TagRemoved struct {
	Tag string
}

func (TagRemoved) fieldDeltaTag() string { return "TagRemoved" }

// LinkType enumerates the four typed link sets a LinkAdded/LinkRemoved
// delta may target.
type LinkType string

const (
	LinkPattern    LinkType = "pattern"
	LinkConstraint LinkType = "constraint"
	LinkFile       LinkType = "file"
	LinkFunction   LinkType = "function"
)

type LinkAdded struct {
	LinkType  LinkType
	Target    string
	UniqueTag UniqueTagRef
}

func (LinkAdded) fieldDeltaTag() string { return "LinkAdded" }

type LinkRemoved struct {
	LinkType LinkType
	Target   string
}

func (LinkRemoved) fieldDeltaTag() string { return "LinkRemoved" }

type AccessCountIncremented struct {
	Agent    string
	NewCount uint64
}

func (AccessCountIncremented) fieldDeltaTag() string { return "AccessCountIncremented" }

type ImportanceChanged struct {
	Value     core.Importance
	Timestamp time.Time
	AgentID   string
}

func (ImportanceChanged) fieldDeltaTag() string { return "ImportanceChanged" }

type ArchivedChanged struct {
	Value     bool
	Timestamp time.Time
	AgentID   string
}

func (ArchivedChanged) fieldDeltaTag() string { return "ArchivedChanged" }

type ProvenanceHopAdded struct {
	Hop core.ProvenanceHop
}

func (ProvenanceHopAdded) fieldDeltaTag() string { return "ProvenanceHopAdded" }

// MemoryCreated signals full-state creation; applied separately from
// field-level merge (see ApplyDelta).
type MemoryCreated struct {
	Snapshot *MemoryCRDT
}

func (MemoryCreated) fieldDeltaTag() string { return "MemoryCreated" }

type NamespaceChanged struct {
	Namespace core.NamespaceID
	Timestamp time.Time
	AgentID   string
}

func (NamespaceChanged) fieldDeltaTag() string { return "NamespaceChanged" }

// UniqueTagRef mirrors crdt.UniqueTag for wire encoding without importing
// the crdt package's internal tag formatting.
type UniqueTagRef struct {
	AgentID  string
	Sequence uint64
}

// MemoryDelta is the wire envelope for a set of field changes to one
// memory, matching spec.md §6's delta envelope schema.
type MemoryDelta struct {
	MemoryID     string
	SourceAgent  string
	Clock        map[string]uint64
	FieldDeltas  []FieldDelta
	Timestamp    time.Time
}
