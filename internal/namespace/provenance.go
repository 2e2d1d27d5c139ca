package namespace

import (
	"sort"
	"sync"

	"cortex/internal/core"
)

// ProvenanceTracker stores and serves each memory's append-only
// provenance chain.
type ProvenanceTracker struct {
	mu     sync.RWMutex
	chains map[string][]core.ProvenanceHop
}

func NewProvenanceTracker() *ProvenanceTracker {
	return &ProvenanceTracker{chains: make(map[string][]core.ProvenanceHop)}
}

// Append adds a hop to memoryID's chain, keeping the chain sorted by
// timestamp (hops normally arrive in order, but merges can interleave
// concurrent agents' hops).
func (t *ProvenanceTracker) Append(memoryID string, hop core.ProvenanceHop) {
	t.mu.Lock()
	defer t.mu.Unlock()
	chain := append(t.chains[memoryID], hop)
	sort.Slice(chain, func(i, j int) bool { return chain[i].Timestamp < chain[j].Timestamp })
	t.chains[memoryID] = chain
}

// GetChain returns memoryID's full provenance chain in timestamp order.
func (t *ProvenanceTracker) GetChain(memoryID string) []core.ProvenanceHop {
	t.mu.RLock()
	defer t.mu.RUnlock()
	chain := t.chains[memoryID]
	out := make([]core.ProvenanceHop, len(chain))
	copy(out, chain)
	return out
}

// ChainConfidence computes spec.md:96's clamp(prod(1+delta_i), 0, 1)
// over every hop's ConfidenceDelta, the net effect of the chain on the
// memory's confidence. An empty chain is the empty product, 1.0,
// matching tmc_prov_02_chain_confidence's "no-chain" case.
func (t *ProvenanceTracker) ChainConfidence(memoryID string) float64 {
	chain := t.GetChain(memoryID)
	deltas := make([]float64, len(chain))
	for i, hop := range chain {
		deltas[i] = hop.ConfidenceDelta
	}
	return productClampConfidence(deltas)
}

// productClampConfidence folds a sequence of confidence deltas into
// clamp(prod(1+delta_i), 0, 1), shared by ChainConfidence and
// CrossAgentTracer's total_confidence.
func productClampConfidence(deltas []float64) float64 {
	total := 1.0
	for _, d := range deltas {
		total *= 1 + d
	}
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// GetOrigin classifies a memory by its first provenance hop. An empty
// chain defaults to human origin (spec.md:211).
func (t *ProvenanceTracker) GetOrigin(memoryID string) core.Origin {
	chain := t.GetChain(memoryID)
	if len(chain) == 0 {
		return core.OriginHuman
	}
	switch chain[0].Action {
	case core.ActionProjectedTo:
		return core.OriginProjected
	case core.ActionCreated:
		return core.OriginAgentCreated
	default:
		return core.OriginDerived
	}
}

// correctionDampening is the per-hop attenuation a correction's
// confidence delta undergoes as it propagates along a provenance or
// causal chain, and correctionCutoff is the magnitude below which
// propagation stops (spec.md's literal scenario: chain length 4,
// strengths 1.0, 0.7, 0.49, 0.343, a distance-9 hop never applied).
const (
	correctionDampening = 0.7
	correctionCutoff    = 0.05
)

// CorrectionPropagator carries a correction's confidence delta outward
// along a chain of memory ids, attenuating by correctionDampening at
// each hop and stopping once the remaining magnitude drops below
// correctionCutoff.
type CorrectionPropagator struct{}

// CorrectionStep is one memory's share of a propagated correction.
type CorrectionStep struct {
	MemoryID string
	Delta    float64
	Distance int
}

// Propagate walks chain (ordered from the corrected memory outward) and
// returns the delta applied at each hop.
func (CorrectionPropagator) Propagate(seedDelta float64, chain []string) []CorrectionStep {
	var steps []CorrectionStep
	current := seedDelta
	for i, id := range chain {
		if i > 0 {
			current *= correctionDampening
		}
		if abs(current) < correctionCutoff {
			break
		}
		steps = append(steps, CorrectionStep{MemoryID: id, Delta: current, Distance: i})
	}
	return steps
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
