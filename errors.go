package inject

import (
	"fmt"
	"strings"
)

// NoResourceError is returned by Resolve when no binding serves the
// requested dependency.
type NoResourceError struct {
	Dependency Dependency
}

func (e *NoResourceError) Error() string {
	return fmt.Sprintf("no resource found for dependency: %s", e.Dependency)
}

// AmbiguousResolutionError is returned by Resolve when more than one
// binding serves the dependency and no strict winner exists after all
// tie-breaks.
type AmbiguousResolutionError struct {
	Dependency Dependency
	Candidates []Resource
}

func (e *AmbiguousResolutionError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("ambiguous resolution for dependency %s, candidates: %s",
		e.Dependency, strings.Join(names, " | "))
}

// AmbiguousBindingError aborts bootstrap when two explicit declarations
// claim the same resource with no precedence difference.
type AmbiguousBindingError struct {
	Resource Resource
	Sources  [2]Source
}

func (e *AmbiguousBindingError) Error() string {
	return fmt.Sprintf("ambiguous binding for resource %s declared by %s and %s",
		e.Resource, e.Sources[0], e.Sources[1])
}

// UnboundScopeError aborts bootstrap when a declaration references a scope
// that was never registered.
type UnboundScopeError struct {
	Scope    ScopeName
	Resource Resource
}

func (e *UnboundScopeError) Error() string {
	return fmt.Sprintf("scope %q referenced by %s is not bound", e.Scope, e.Resource)
}

// DependencyCycleError is returned when a binding ends up depending on
// itself through its construction chain.
type DependencyCycleError struct {
	Dependency Dependency
	Target     Instance
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle on %s in chain: %s", e.Target, e.Dependency)
}

// ReferenceLoopError is returned when the winning binding is a pure
// reference to an instance that is already being constructed up the chain,
// which would otherwise recurse forever.
type ReferenceLoopError struct {
	Dependency Dependency
	Reference  Instance
}

func (e *ReferenceLoopError) Error() string {
	return fmt.Sprintf("reference loop: %s referenced again while resolving %s", e.Reference, e.Dependency)
}

// UnstableScopeError is returned when a binding in a stable scope tries to
// capture a dependency from a less stable one without the scope having
// opted out of the check.
type UnstableScopeError struct {
	Dependency Dependency
	Parent     Scoping
	Child      Scoping
}

func (e *UnstableScopeError) Error() string {
	return fmt.Sprintf("unstable dependency: %s (%s) must not capture %s-scoped %s",
		e.Parent.Name, e.Dependency, e.Child.Name, e.Dependency.Instance())
}

// SupplyError wraps a failure of the winning binding's supplier, including
// the target type not being constructable.
type SupplyError struct {
	Resource   Resource
	Dependency Dependency
	Err        error
}

func (e *SupplyError) Error() string {
	return fmt.Sprintf("supplying %s for %s failed: %v", e.Resource, e.Dependency, e.Err)
}

func (e *SupplyError) Unwrap() error {
	return e.Err
}

// TypeMismatchError is returned by the typed accessors when the supplied
// value does not satisfy the requested Go type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// NoSubContextError is returned by SubContext for names that were never
// declared.
type NoSubContextError struct {
	Name Name
}

func (e *NoSubContextError) Error() string {
	return fmt.Sprintf("no sub-context declared for name %q", e.Name)
}

// EagerInitError aborts bootstrap when an eager binding fails to construct.
type EagerInitError struct {
	Resource Resource
	Err      error
}

func (e *EagerInitError) Error() string {
	return fmt.Sprintf("eager construction of %s failed: %v", e.Resource, e.Err)
}

func (e *EagerInitError) Unwrap() error {
	return e.Err
}
