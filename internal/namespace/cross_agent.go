package namespace

import "cortex/internal/core"

// CrossAgentTrace is the aggregate result of trace_cross_agent: a
// capped walk of one memory's own provenance chain, grounded on
// tmc_prov_05_cross_agent_trace (provenance_test.rs).
type CrossAgentTrace struct {
	MemoryID        string
	AgentsInvolved  []string
	HopCount        int
	ConfidenceChain []float64
	TotalConfidence float64
}

// CrossAgentTracer implements trace_cross_agent(memory_id, max_depth)
// (spec.md:215) over a ProvenanceTracker's stored chains.
type CrossAgentTracer struct {
	Provenance *ProvenanceTracker
}

// NewCrossAgentTracer builds a tracer over the given provenance store.
func NewCrossAgentTracer(provenance *ProvenanceTracker) *CrossAgentTracer {
	return &CrossAgentTracer{Provenance: provenance}
}

// Trace walks memoryID's own provenance chain, truncated to maxDepth
// hops, and returns the set of agents touched, hop count, per-hop
// confidence deltas, and the product-clamp total confidence over the
// truncated chain.
func (t *CrossAgentTracer) Trace(memoryID string, maxDepth int) CrossAgentTrace {
	if maxDepth < 0 {
		maxDepth = 0
	}
	chain := t.Provenance.GetChain(memoryID)
	if maxDepth < len(chain) {
		chain = chain[:maxDepth]
	}

	agentsSeen := make(map[string]bool, len(chain))
	var agentsInvolved []string
	confidenceChain := make([]float64, len(chain))
	for i, hop := range chain {
		confidenceChain[i] = hop.ConfidenceDelta
		if !agentsSeen[hop.AgentID] {
			agentsSeen[hop.AgentID] = true
			agentsInvolved = append(agentsInvolved, hop.AgentID)
		}
	}

	return CrossAgentTrace{
		MemoryID:        memoryID,
		AgentsInvolved:  agentsInvolved,
		HopCount:        len(chain),
		ConfidenceChain: confidenceChain,
		TotalConfidence: productClampConfidence(confidenceChain),
	}
}

// AgentStatus mirrors the original implementation's AgentStatus enum.
type AgentStatus string

const (
	AgentActive       AgentStatus = "active"
	AgentIdle         AgentStatus = "idle"
	AgentDeregistered AgentStatus = "deregistered"
)

// AgentRegistration is what Register returns and List/Get serve back, mirroring the NAPI agent_registration_to_json shape.
type AgentRegistration struct {
	AgentID      string
	Name         string
	Capabilities []string
	Status       AgentStatus
}

// AgentRegistry tracks registered agents and their capabilities, a
// feature supplemented from the original implementation's
// cortex-napi multiagent bindings (register_agent/deregister_agent/
// get_agent/list_agents) that the distilled spec omitted.
type AgentRegistry struct {
	agents map[string]*AgentRegistration
}

func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*AgentRegistration)}
}

// Register adds a new agent. name and every capability must be
// non-empty, mirroring the NAPI binding's input validation.
func (r *AgentRegistry) Register(agentID, name string, capabilities []string) (*AgentRegistration, error) {
	if name == "" {
		return nil, &core.ValidationError{Dimension: "agent_name", Reason: "must be non-empty"}
	}
	for _, c := range capabilities {
		if c == "" {
			return nil, &core.ValidationError{Dimension: "agent_capability", Reason: "must be non-empty"}
		}
	}
	reg := &AgentRegistration{AgentID: agentID, Name: name, Capabilities: capabilities, Status: AgentActive}
	r.agents[agentID] = reg
	return reg, nil
}

func (r *AgentRegistry) Deregister(agentID string) {
	if reg, ok := r.agents[agentID]; ok {
		reg.Status = AgentDeregistered
	}
}

func (r *AgentRegistry) Get(agentID string) (*AgentRegistration, bool) {
	reg, ok := r.agents[agentID]
	return reg, ok
}

// List returns every agent, optionally filtered by status.
func (r *AgentRegistry) List(statusFilter *AgentStatus) []*AgentRegistration {
	out := make([]*AgentRegistration, 0, len(r.agents))
	for _, reg := range r.agents {
		if statusFilter != nil && reg.Status != *statusFilter {
			continue
		}
		out = append(out, reg)
	}
	return out
}
