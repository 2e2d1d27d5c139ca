// Package namespace implements the multi-agent namespace, permission,
// provenance, and correction-propagation surface (C10), grounded on the
// 12-function multi-agent API in the original implementation's
// cortex-napi multiagent bindings.
package namespace

import (
	"sync"

	"cortex/internal/core"
)

// Namespace is a registered namespace with its owner and ACL.
type Namespace struct {
	ID    core.NamespaceID
	Owner string
	ACL   map[string]map[core.Permission]bool
}

// Manager tracks registered namespaces; unique by (scope, name).
type Manager struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
}

func NewManager() *Manager {
	return &Manager{namespaces: make(map[string]*Namespace)}
}

// defaultACL grants the owner all four permissions, whatever the scope;
// no other agent holds a permission until Grant adds one.
func defaultACL(owner string) map[string]map[core.Permission]bool {
	return map[string]map[core.Permission]bool{
		owner: {core.PermRead: true, core.PermWrite: true, core.PermShare: true, core.PermAdmin: true},
	}
}

// Create registers a new namespace owned by owner. Returns
// core.ErrDuplicateID if (scope, name) is already registered.
func (m *Manager) Create(id core.NamespaceID, owner string) (*Namespace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := id.URI()
	if _, exists := m.namespaces[key]; exists {
		return nil, core.NewDuplicateIDError("namespace.Create", key)
	}
	ns := &Namespace{ID: id, Owner: owner, ACL: defaultACL(owner)}
	m.namespaces[key] = ns
	return ns, nil
}

// Get looks up a namespace by id.
func (m *Manager) Get(id core.NamespaceID) (*Namespace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.namespaces[id.URI()]
	return ns, ok
}

// List returns every registered namespace.
func (m *Manager) List() []*Namespace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Namespace, 0, len(m.namespaces))
	for _, ns := range m.namespaces {
		out = append(out, ns)
	}
	return out
}

// PermissionManager grants, revokes, and checks ACL entries. Ownership
// implies every permission even if the ACL map has no explicit entry.
type PermissionManager struct {
	manager *Manager
}

func NewPermissionManager(m *Manager) *PermissionManager {
	return &PermissionManager{manager: m}
}

func (p *PermissionManager) Grant(id core.NamespaceID, agent string, perm core.Permission) error {
	ns, ok := p.manager.Get(id)
	if !ok {
		return core.NewNamespaceNotFoundError(id.URI())
	}
	p.manager.mu.Lock()
	defer p.manager.mu.Unlock()
	if ns.ACL[agent] == nil {
		ns.ACL[agent] = make(map[core.Permission]bool)
	}
	ns.ACL[agent][perm] = true
	return nil
}

func (p *PermissionManager) Revoke(id core.NamespaceID, agent string, perm core.Permission) error {
	ns, ok := p.manager.Get(id)
	if !ok {
		return core.NewNamespaceNotFoundError(id.URI())
	}
	p.manager.mu.Lock()
	defer p.manager.mu.Unlock()
	if ns.ACL[agent] != nil {
		delete(ns.ACL[agent], perm)
	}
	return nil
}

// Check reports whether agent holds perm on id, either explicitly or by
// ownership.
func (p *PermissionManager) Check(id core.NamespaceID, agent string, perm core.Permission) (bool, error) {
	ns, ok := p.manager.Get(id)
	if !ok {
		return false, core.NewNamespaceNotFoundError(id.URI())
	}
	p.manager.mu.RLock()
	defer p.manager.mu.RUnlock()
	if ns.Owner == agent {
		return true, nil
	}
	return ns.ACL[agent][perm], nil
}

// RequirePermission returns a *core.MultiAgentError if agent lacks perm
// on id; used at operation boundaries that must fail closed.
func (p *PermissionManager) RequirePermission(id core.NamespaceID, agent string, perm core.Permission) error {
	ok, err := p.Check(id, agent, perm)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewPermissionDeniedError(id.URI(), agent, perm)
	}
	return nil
}
