package inject

import (
	"fmt"
	"sync"
)

// ScopeName identifies a lifecycle policy in declarations. The scope itself
// is registered at bootstrap; referencing an unregistered name is a fatal
// bootstrap error.
type ScopeName string

const (
	// ScopeUnscoped runs the supplier on every resolution. No repository is
	// involved.
	ScopeUnscoped ScopeName = "unscoped"

	// ScopeApplication caches one instance per binding for the lifetime of
	// the injector.
	ScopeApplication ScopeName = "application"

	// ScopeDependencyType caches one instance per binding and requested
	// type.
	ScopeDependencyType ScopeName = "dependency-type"

	// ScopeDependencyInstance caches one instance per binding and requested
	// (name, type) instance.
	ScopeDependencyInstance ScopeName = "dependency-instance"
)

// Provider is the zero-argument construction thunk a scope runs when its
// slot is empty. It must be safe to run speculatively unless the scope
// serializes construction.
type Provider func() (any, error)

// Scope is a lifecycle policy. For a given scope instance and serial ID the
// provider runs "as if once": races may execute it more than once, but all
// callers observe the single published result. A failed provider publishes
// nothing.
type Scope interface {
	Provide(serial int, slots int, dep Dependency, provide Provider) (any, error)
}

// Scoping describes a scope's behaviour relative to other scopes. A higher
// permanence means longer-lived instances; a binding must not capture a
// dependency from a strictly less permanent scope unless one of the two
// scopes was registered with IgnoreStability.
type Scoping struct {
	Name            ScopeName
	Permanence      int
	IgnoreStability bool
}

// MoreStableThan reports whether instances in this scope outlive instances
// in the other.
func (s Scoping) MoreStableThan(other Scoping) bool {
	return s.Permanence > other.Permanence
}

func (s Scoping) String() string {
	return fmt.Sprintf("%s(%d)", s.Name, s.Permanence)
}

// NewApplicationScope returns the application-singleton scope backed by the
// atomically published repository. Providers may race; one result wins.
func NewApplicationScope(slots int) Scope {
	return &repositoryScope{repo: newLazyRepository(slots)}
}

// NewSerializedApplicationScope returns an application scope that takes a
// per-slot lock around construction instead of allowing speculative runs.
// Use it for side-effect-sensitive suppliers, at the cost of throughput on
// first access.
func NewSerializedApplicationScope(slots int) Scope {
	return &repositoryScope{repo: newSerializedRepository(slots)}
}

type repositoryScope struct {
	repo repository
}

func (s *repositoryScope) Provide(serial int, slots int, dep Dependency, provide Provider) (any, error) {
	return s.repo.access(serial, provide)
}

// NewDependencyTypeScope returns a scope holding one instance per binding
// and requested type. Useful for suppliers that specialize on what was
// asked for.
func NewDependencyTypeScope(slots int) Scope {
	return &keyedScope{slots: make([]sync.Map, slots), key: func(dep Dependency) string {
		return dep.Type().String()
	}}
}

// NewDependencyInstanceScope returns a scope holding one instance per
// binding and requested (name, type) instance.
func NewDependencyInstanceScope(slots int) Scope {
	return &keyedScope{slots: make([]sync.Map, slots), key: func(dep Dependency) string {
		return dep.Instance().String()
	}}
}

// keyedScope partitions each serial slot by a key derived from the
// dependency. Publication uses LoadOrStore, so concurrent providers may
// race but only one value is ever observed per key.
type keyedScope struct {
	slots []sync.Map
	key   func(dep Dependency) string
}

func (s *keyedScope) Provide(serial int, slots int, dep Dependency, provide Provider) (any, error) {
	m := &s.slots[serial]
	key := s.key(dep)
	if v, ok := m.Load(key); ok {
		return v, nil
	}
	v, err := provide()
	if err != nil {
		return nil, err
	}
	actual, _ := m.LoadOrStore(key, v)
	return actual, nil
}
