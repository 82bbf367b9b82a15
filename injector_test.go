package inject

import (
	"context"
	"errors"
	"testing"

	"github.com/gburgyan/go-timing"
	"github.com/stretchr/testify/assert"
)

type number interface {
	value() int
}

type integerBox struct {
	n int
}

func (b *integerBox) value() int { return b.n }

type reportSvc struct {
	dsn string
}

type auditSvc struct {
	dsn string
}

type session struct{}

type gateway struct {
	s *session
}

type xNode struct{}

type yNode struct{}

type alphaPart struct {
	b *betaPart
}

type betaPart struct {
	a *alphaPart
}

func mustBootstrap(t *testing.T, decls []Declaration, opts ...Option) *Injector {
	t.Helper()
	in, err := Bootstrap(context.Background(), decls, opts...)
	assert.NoError(t, err)
	return in
}

func TestInjector_ResolveMissing(t *testing.T) {
	in := mustBootstrap(t, nil)

	_, err := GetWithError[*integerBox](context.Background(), in)
	var missing *NoResourceError
	assert.ErrorAs(t, err, &missing)

	_, ok := GetOptional[*integerBox](context.Background(), in)
	assert.False(t, ok)

	assert.Panics(t, func() { Get[*integerBox](context.Background(), in) })
}

func TestInjector_OptionalDependencyYieldsZeroValue(t *testing.T) {
	in := mustBootstrap(t, nil)

	value, err := in.Resolve(context.Background(), DependencyOf(TypeOf[*integerBox]()).Optional())
	assert.NoError(t, err)
	assert.Nil(t, value)

	value, err = in.Resolve(context.Background(), DependencyOf(TypeOf[int]()).Optional())
	assert.NoError(t, err)
	assert.Equal(t, 0, value)
}

func TestInjector_CovariantSpecificity(t *testing.T) {
	// One binding for the interface, a more specific one for the concrete
	// type. A request for the concrete type matches both and the concrete
	// binding wins; a request for the interface only matches the interface
	// binding.
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[number]())), Constant(&integerBox{n: 1})),
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())), Constant(&integerBox{n: 2})),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	concrete, err := GetWithError[*integerBox](ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, 2, concrete.n)

	iface, err := GetWithError[number](ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, 1, iface.value())
}

func TestInjector_AmbiguousResolution(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(InstanceOf(Named("a"), TypeOf[int]())), Constant(1)),
		Declare(ResourceOf(InstanceOf(Named("b"), TypeOf[int]())), Constant(2)),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	_, err := GetWithError[int](ctx, in)
	var ambiguous *AmbiguousResolutionError
	assert.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)

	// Naming the request disambiguates.
	a, err := GetNamed[int](ctx, in, Named("a"))
	assert.NoError(t, err)
	assert.Equal(t, 1, a)
}

func TestInjector_AmbiguityNotMaskedByWeakerCandidate(t *testing.T) {
	// "a" and "b" are tied for an unnamed request. The prefix binding is
	// strictly weaker than "a" and sorts between the two, but it must not
	// hide the tie further down the candidate list.
	decls := []Declaration{
		Declare(ResourceOf(InstanceOf(Named("a"), TypeOf[int]())), Constant(1)),
		Declare(ResourceOf(InstanceOf(Prefixed("a"), TypeOf[int]())), Constant(2)),
		Declare(ResourceOf(InstanceOf(Named("b"), TypeOf[int]())), Constant(3)),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	_, err := GetWithError[int](ctx, in)
	var ambiguous *AmbiguousResolutionError
	assert.ErrorAs(t, err, &ambiguous)

	// Named requests still have strict winners.
	a, err := GetNamed[int](ctx, in, Named("a"))
	assert.NoError(t, err)
	assert.Equal(t, 1, a)

	b, err := GetNamed[int](ctx, in, Named("b"))
	assert.NoError(t, err)
	assert.Equal(t, 3, b)
}

func TestInjector_DefaultNameWinsOverNamed(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(InstanceOf(Named("backup"), TypeOf[int]())), Constant(1)),
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[int]())), Constant(2)),
	}
	in := mustBootstrap(t, decls)

	got, err := GetWithError[int](context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestInjector_PrefixPatternBinding(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(InstanceOf(Prefixed("jdbc"), TypeOf[string]())), Constant("pooled")),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	got, err := GetNamed[string](ctx, in, Named("jdbc-main"))
	assert.NoError(t, err)
	assert.Equal(t, "pooled", got)

	_, err = GetNamed[string](ctx, in, Named("redis-main"))
	var missing *NoResourceError
	assert.ErrorAs(t, err, &missing)
}

func TestInjector_TargetedBinding(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[string]())), Constant("global")),
		{
			Resource: Resource{
				Instance: DefaultInstanceOf(TypeOf[string]()),
				Target:   TargetOf(DefaultInstanceOf(TypeOf[*reportSvc]())),
			},
			Supplier: Constant("report-db"),
			Source:   Source{Precedence: Explicit},
		},
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*reportSvc]())), Factory(func(dsn string) *reportSvc {
			return &reportSvc{dsn: dsn}
		})),
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*auditSvc]())), Factory(func(dsn string) *auditSvc {
			return &auditSvc{dsn: dsn}
		})),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	// The targeted binding only serves constructions of its target.
	assert.Equal(t, "report-db", Get[*reportSvc](ctx, in).dsn)
	assert.Equal(t, "global", Get[*auditSvc](ctx, in).dsn)
	assert.Equal(t, "global", Get[string](ctx, in))
}

func TestInjector_SingletonIdentity(t *testing.T) {
	calls := 0
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())), Factory(func() *integerBox {
			calls++
			return &integerBox{n: calls}
		})),
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	first := Get[*integerBox](ctx, in)
	second := Get[*integerBox](ctx, in)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestInjector_UnscopedConstructsEveryTime(t *testing.T) {
	calls := 0
	decls := []Declaration{
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())),
			Supplier: Factory(func() *integerBox {
				calls++
				return &integerBox{n: calls}
			}),
			Scope:  ScopeUnscoped,
			Source: Source{Precedence: Explicit},
		},
	}
	in := mustBootstrap(t, decls)
	ctx := context.Background()

	first := Get[*integerBox](ctx, in)
	second := Get[*integerBox](ctx, in)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestInjector_DependencyCycle(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*alphaPart]())), Factory(func(b *betaPart) *alphaPart {
			return &alphaPart{b: b}
		})),
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*betaPart]())), Factory(func(a *alphaPart) *betaPart {
			return &betaPart{a: a}
		})),
	}
	in := mustBootstrap(t, decls)

	_, err := GetWithError[*alphaPart](context.Background(), in)
	var cycle *DependencyCycleError
	assert.ErrorAs(t, err, &cycle)
}

func TestInjector_ReferenceLoop(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*xNode]())),
			ReferenceTo(DefaultInstanceOf(TypeOf[*yNode]()))),
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*yNode]())),
			ReferenceTo(DefaultInstanceOf(TypeOf[*xNode]()))),
	}
	in := mustBootstrap(t, decls)

	_, err := GetWithError[*xNode](context.Background(), in)
	var loop *ReferenceLoopError
	assert.ErrorAs(t, err, &loop)
}

func TestInjector_SelfReferenceLoop(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*xNode]())),
			ReferenceTo(DefaultInstanceOf(TypeOf[*xNode]()))),
	}
	in := mustBootstrap(t, decls)

	_, err := GetWithError[*xNode](context.Background(), in)
	var loop *ReferenceLoopError
	assert.ErrorAs(t, err, &loop)
}

func TestInjector_UnstableScopeCapture(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*gateway]())), Factory(func(s *session) *gateway {
			return &gateway{s: s}
		})),
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[*session]())),
			Supplier: Factory(func() *session { return &session{} }),
			Scope:    ScopeDependencyInstance,
			Source:   Source{Precedence: Explicit},
		},
	}
	in := mustBootstrap(t, decls)

	// An application singleton must not capture a per-dependency instance.
	_, err := GetWithError[*gateway](context.Background(), in)
	var unstable *UnstableScopeError
	assert.ErrorAs(t, err, &unstable)

	// The fragile instance itself resolves fine.
	_, err = GetWithError[*session](context.Background(), in)
	assert.NoError(t, err)
}

func TestInjector_UnscopedComposesIntoSingletons(t *testing.T) {
	decls := []Declaration{
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[int]())),
			Supplier: Constant(7),
			Scope:    ScopeUnscoped,
			Source:   Source{Precedence: Explicit},
		},
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())), Factory(func(n int) *integerBox {
			return &integerBox{n: n}
		})),
	}
	in := mustBootstrap(t, decls)

	box, err := GetWithError[*integerBox](context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, 7, box.n)
}

func TestInjector_EagerConstruction(t *testing.T) {
	calls := 0
	decls := []Declaration{
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())),
			Supplier: Factory(func() *integerBox {
				calls++
				return &integerBox{}
			}),
			Source: Source{Precedence: Explicit},
			Eager:  true,
		},
	}
	in := mustBootstrap(t, decls)
	assert.Equal(t, 1, calls)

	// Resolution reuses the eagerly constructed singleton.
	Get[*integerBox](context.Background(), in)
	assert.Equal(t, 1, calls)
}

func TestInjector_EagerConstructsItsOwnBinding(t *testing.T) {
	calls := 0
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[int]())), Constant(1)),
		{
			Resource: ResourceOf(InstanceOf(Any, TypeOf[int]())),
			Supplier: Factory(func() int {
				calls++
				return 2
			}),
			Source: Source{Precedence: Explicit},
			Eager:  true,
		},
	}
	in := mustBootstrap(t, decls)

	// The eager binding's own supplier ran, even though the unnamed binding
	// is the more precise candidate for the eager instance.
	assert.Equal(t, 1, calls)

	// Plain requests still prefer the more precise unnamed binding.
	got, err := GetWithError[int](context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestInjector_EagerSkipsRestrictedTargets(t *testing.T) {
	calls := 0
	decls := []Declaration{
		{
			Resource: Resource{
				Instance: DefaultInstanceOf(TypeOf[*integerBox]()),
				Target:   TargetOf(DefaultInstanceOf(TypeOf[*gateway]())),
			},
			Supplier: Factory(func() *integerBox {
				calls++
				return &integerBox{}
			}),
			Source: Source{Precedence: Explicit},
			Eager:  true,
		},
	}
	mustBootstrap(t, decls)
	assert.Equal(t, 0, calls)
}

func TestInjector_EagerFailureAbortsBootstrap(t *testing.T) {
	boom := errors.New("boom")
	decls := []Declaration{
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())),
			Supplier: Factory(func() (*integerBox, error) { return nil, boom }),
			Source:   Source{Precedence: Explicit},
			Eager:    true,
		},
	}

	_, err := Bootstrap(context.Background(), decls)
	var eager *EagerInitError
	assert.ErrorAs(t, err, &eager)
	assert.ErrorIs(t, err, boom)
}

func TestInjector_SubContext(t *testing.T) {
	subDecls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[int]())), Constant(2)),
	}
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[string]())), Constant("parent")),
	}
	in := mustBootstrap(t, decls, WithSubContext(Named("reports"), subDecls))
	ctx := context.Background()

	sub, err := in.SubContext(ctx, Named("reports"))
	assert.NoError(t, err)

	got, err := GetWithError[int](ctx, sub)
	assert.NoError(t, err)
	assert.Equal(t, 2, got)

	// Sub-contexts are independent: parent bindings are not visible.
	_, err = GetWithError[string](ctx, sub)
	var missing *NoResourceError
	assert.ErrorAs(t, err, &missing)

	// The same child is returned on every access.
	again, err := in.SubContext(ctx, Named("reports"))
	assert.NoError(t, err)
	assert.Same(t, sub, again)

	_, err = in.SubContext(ctx, Named("unknown"))
	var none *NoSubContextError
	assert.ErrorAs(t, err, &none)
}

func TestInjector_TimingInstrumentsSuppliers(t *testing.T) {
	prev := EnableTiming
	EnableTiming = TimingSuppliers
	defer func() { EnableTiming = prev }()

	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())), Factory(func() *integerBox {
			return &integerBox{n: 5}
		})),
	}
	in := mustBootstrap(t, decls)

	tCtx := timing.Root(context.Background())
	box := Get[*integerBox](tCtx, in)
	assert.Equal(t, 5, box.n)
}

func TestInjector_TimingInstrumentsEagerBootstrap(t *testing.T) {
	prev := EnableTiming
	EnableTiming = TimingEager
	defer func() { EnableTiming = prev }()

	calls := 0
	decls := []Declaration{
		{
			Resource: ResourceOf(DefaultInstanceOf(TypeOf[*integerBox]())),
			Supplier: Factory(func() *integerBox {
				calls++
				return &integerBox{}
			}),
			Source: Source{Precedence: Explicit},
			Eager:  true,
		},
	}

	tCtx := timing.Root(context.Background())
	_, err := Bootstrap(tCtx, decls)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestInjector_TypeMismatch(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[string]())), Constant(42)),
	}
	in := mustBootstrap(t, decls)

	_, err := GetWithError[string](context.Background(), in)
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "string", mismatch.Expected)
	assert.Equal(t, "int", mismatch.Got)
}

func TestInjector_Status(t *testing.T) {
	decls := []Declaration{
		Declare(ResourceOf(DefaultInstanceOf(TypeOf[int]())), Constant(42)),
		Declare(ResourceOf(InstanceOf(Named("main"), TypeOf[string]())), Factory(func(n int) string {
			return "x"
		})),
	}
	in := mustBootstrap(t, decls)

	status := in.Status()
	assert.Contains(t, status, "constant 42")
	assert.Contains(t, status, "scope: application")
	assert.Contains(t, status, "main string")
	assert.Contains(t, status, "(int) string")
}
