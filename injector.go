package inject

import (
	"context"
	"reflect"
	"sync"

	"github.com/gburgyan/go-timing"
)

// TimingMode controls the optional timing diagnostics around supplier runs.
type TimingMode int

const (
	// TimingDisable turns timing off for all injectors.
	TimingDisable TimingMode = iota

	// TimingEager starts a timing context around the eager construction
	// phase of bootstrap.
	TimingEager

	// TimingSuppliers starts a timing context for every supplier that runs.
	// Useful to see where construction time goes and the exact resolution
	// stack.
	TimingSuppliers
)

// EnableTiming selects how much timing information is collected. Timing
// contexts are only started when the resolution context carries a timing
// root, so enabling this is cheap for callers that don't.
var EnableTiming = TimingDisable

type scopeEntry struct {
	scope   Scope
	scoping Scoping
}

// Injector is the runtime entry point: an immutable set of bindings
// assembled by Bootstrap plus one repository-backed scope instance per
// lifecycle. Resolve may be called concurrently from any number of
// goroutines; the only mutable state it touches are the scope repositories.
type Injector struct {
	// bindings are sorted most applicable first.
	bindings  []Binding
	scopes    map[ScopeName]scopeEntry
	subs      map[Name]*subContext
	slotCount int
}

// Resolve returns the instance satisfying the dependency, constructing it
// through the winning binding's scope if its slot is still empty. Failures
// are typed: NoResourceError, AmbiguousResolutionError, ReferenceLoopError,
// DependencyCycleError, UnstableScopeError or SupplyError.
func (in *Injector) Resolve(ctx context.Context, dep Dependency) (any, error) {
	var winner *Binding
	for i := range in.bindings {
		b := &in.bindings[i]
		if !b.Resource.IsApplicableFor(dep) {
			continue
		}
		if winner == nil {
			winner = b
			continue
		}
		// The bindings are sorted most applicable first, so the first
		// applicable entry is the presumed winner. It must strictly beat
		// every remaining candidate on resource precision or source
		// precedence: a weaker candidate sorting in between must not mask a
		// tie further down. Declaration order already broke every comparable
		// tie during the bootstrap sort, so what is left tied here is truly
		// ambiguous.
		if !winner.Resource.MoreApplicableThan(b.Resource) &&
			winner.Source.Precedence == b.Source.Precedence {
			return nil, &AmbiguousResolutionError{
				Dependency: dep,
				Candidates: []Resource{winner.Resource, b.Resource},
			}
		}
	}

	if winner == nil {
		if dep.IsOptional() {
			return zeroOf(dep.Type()), nil
		}
		return nil, &NoResourceError{Dependency: dep}
	}

	return in.generate(ctx, winner, dep)
}

// generate drives the winning binding through its scope. The dependency
// chain is extended before the supplier runs so nested resolutions see the
// new target, and the instance is only published to its slot after the
// supplier returned, which is what turns self-reference into a detected
// cycle instead of an observation of a half-built value.
func (in *Injector) generate(ctx context.Context, b *Binding, dep Dependency) (any, error) {
	if ref, ok := b.Supplier.(referencer); ok && dep.ChainContains(ref.references()) {
		return nil, &ReferenceLoopError{Dependency: dep, Reference: ref.references()}
	}

	if parent, ok := dep.IntoScoping(); ok {
		if parent.MoreStableThan(b.Scoping) && !parent.IgnoreStability && !b.Scoping.IgnoreStability {
			return nil, &UnstableScopeError{Dependency: dep, Parent: parent, Child: b.Scoping}
		}
	}

	next, err := dep.InjectingInto(b.Resource.Instance, b.Serial, b.Scoping)
	if err != nil {
		return nil, err
	}

	provide := func() (any, error) {
		supplyCtx := ctx
		if EnableTiming >= TimingSuppliers {
			tCtx, complete := timing.Start(ctx, "inject: "+b.Resource.Instance.String())
			defer complete()
			supplyCtx = tCtx
		}
		value, err := b.Supplier.Supply(supplyCtx, next, in)
		if err != nil {
			return nil, &SupplyError{Resource: b.Resource, Dependency: dep, Err: err}
		}
		return value, nil
	}

	entry := in.scopes[b.Scope]
	if entry.scope == nil {
		return provide()
	}
	return entry.scope.Provide(b.Serial, in.slotCount, next, provide)
}

// constructEager constructs every eager binding in serial order, driving
// each binding's own supplier through its scope rather than re-running
// candidate selection, so a more precise competitor cannot leave the eager
// slot empty. Bindings with a restricted target are skipped; they cannot be
// constructed outside their target.
func (in *Injector) constructEager(ctx context.Context) error {
	eagerCtx := ctx
	if EnableTiming >= TimingEager {
		tCtx, complete := timing.Start(ctx, "inject: eager bootstrap")
		defer complete()
		eagerCtx = tCtx
	}
	for i := range in.bindings {
		b := &in.bindings[i]
		if !b.Eager || b.Resource.Target.IsRestricted() {
			continue
		}
		if _, err := in.generate(eagerCtx, b, DependencyOn(b.Resource.Instance)); err != nil {
			return &EagerInitError{Resource: b.Resource, Err: err}
		}
	}
	return nil
}

// Bindings returns a snapshot of the assembled bindings in resolution
// order, for diagnostics and printing.
func (in *Injector) Bindings() []Binding {
	cp := make([]Binding, len(in.bindings))
	copy(cp, in.bindings)
	return cp
}

// subContext is a named child injector assembled from its own declarations
// on first access.
type subContext struct {
	once  sync.Once
	decls []Declaration
	opts  []Option
	inj   *Injector
	err   error
}

// SubContext returns the named child injector, bootstrapping it on first
// access. The child is independent: it has its own bindings, scopes and
// repositories.
func (in *Injector) SubContext(ctx context.Context, name Name) (*Injector, error) {
	sub, ok := in.subs[name]
	if !ok {
		return nil, &NoSubContextError{Name: name}
	}
	sub.once.Do(func() {
		sub.inj, sub.err = Bootstrap(ctx, sub.decls, sub.opts...)
	})
	return sub.inj, sub.err
}

func zeroOf(t Type) any {
	rt := t.RawType()
	if rt == nil {
		return nil
	}
	return reflect.Zero(rt).Interface()
}

// Get returns the instance of type T from the injector. It panics when
// resolution fails; use GetWithError or GetOptional for error handling.
func Get[T any](ctx context.Context, in *Injector) T {
	value, err := GetWithError[T](ctx, in)
	if err != nil {
		panic(err)
	}
	return value
}

// GetWithError returns the instance of type T, or the resolution error.
func GetWithError[T any](ctx context.Context, in *Injector) (T, error) {
	return GetNamed[T](ctx, in, Any)
}

// GetNamed returns the instance of type T bound under the given name.
func GetNamed[T any](ctx context.Context, in *Injector, name Name) (T, error) {
	var zero T
	value, err := in.Resolve(ctx, DependencyOn(InstanceOf(name, TypeOf[T]())))
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Expected: TypeOf[T]().String(),
			Got:      reflect.TypeOf(value).String(),
		}
	}
	return typed, nil
}

// GetOptional returns the instance of type T and whether it could be
// resolved. It never panics on a missing resource.
func GetOptional[T any](ctx context.Context, in *Injector) (T, bool) {
	value, err := GetWithError[T](ctx, in)
	if err != nil {
		var zero T
		return zero, false
	}
	return value, true
}
