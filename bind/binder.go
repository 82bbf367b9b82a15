// Package bind is the declaration builder for the inject container. A
// Binder accumulates immutable inject.Declaration values; it is plain
// composition over the core types, and the core never depends on it. The
// usual flow is a set of Modules declared once and handed to
// inject.Bootstrap:
//
//	decls := bind.Declarations(&dbModule{}, &serverModule{})
//	injector, err := inject.Bootstrap(ctx, decls)
package bind

import (
	"reflect"
	"strings"

	"github.com/okvist/go-inject"
)

// Module declares a related group of bindings.
type Module interface {
	Declare(b *Binder)
}

// Declarations collects the declarations of all given modules, in order.
func Declarations(modules ...Module) []inject.Declaration {
	b := NewBinder("")
	for _, m := range modules {
		b.Install(m)
	}
	return b.Declarations()
}

// Binder accumulates declarations. It is not safe for concurrent use;
// declaration happens single-threaded before bootstrap.
type Binder struct {
	source inject.Source
	decls  []inject.Declaration

	// contractFilter decides which supertypes a contract bind covers.
	// Usually taken from the env strategy "inject.contract-filter".
	contractFilter func(inject.Type) bool
}

// NewBinder returns a binder whose declarations carry the given source
// identifier, typically the module name.
func NewBinder(sourceIdent string) *Binder {
	return &Binder{source: inject.Source{Ident: sourceIdent, Precedence: inject.Explicit}}
}

// WithContractFilter sets the strategy deciding which supertypes an
// AsContract bind is published under, replacing the default
// interfaces-only admission.
func (b *Binder) WithContractFilter(filter func(inject.Type) bool) *Binder {
	b.contractFilter = filter
	return b
}

// Install runs another module's declarations into this binder, labelling
// them with the module's type name when no source is set yet.
func (b *Binder) Install(m Module) {
	prev := b.source
	if b.source.Ident == "" {
		b.source.Ident = moduleName(m)
	}
	m.Declare(b)
	b.source = prev
}

// Bind starts an explicit binding for the given type.
func (b *Binder) Bind(t inject.Type) *Bind {
	return &Bind{
		binder:   b,
		resource: inject.ResourceOf(inject.DefaultInstanceOf(t)),
		source:   b.source,
	}
}

// AutoBind starts a binding with Auto precedence; any other declaration for
// the same resource silently replaces it.
func (b *Binder) AutoBind(t inject.Type) *Bind {
	x := b.Bind(t)
	x.source.Precedence = inject.Auto
	return x
}

// ImplicitBind starts a binding with Implicit precedence.
func (b *Binder) ImplicitBind(t inject.Type) *Bind {
	x := b.Bind(t)
	x.source.Precedence = inject.Implicit
	return x
}

// RequireBind starts a binding with Required precedence, outranking even
// explicit declarations.
func (b *Binder) RequireBind(t inject.Type) *Bind {
	x := b.Bind(t)
	x.source.Precedence = inject.Required
	return x
}

// Declarations returns a copy of everything declared so far, in declaration
// order.
func (b *Binder) Declarations() []inject.Declaration {
	cp := make([]inject.Declaration, len(b.decls))
	copy(cp, b.decls)
	return cp
}

func (b *Binder) add(d inject.Declaration) {
	b.decls = append(b.decls, d)
}

func moduleName(m Module) string {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.String()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Bind is one binding under construction. Qualifiers return the Bind for
// chaining; the To* terminators emit the declaration.
type Bind struct {
	binder    *Binder
	resource  inject.Resource
	scope     inject.ScopeName
	source    inject.Source
	eager     bool
	contracts bool
}

// Named qualifies the binding with a discriminator name.
func (x *Bind) Named(n inject.Name) *Bind {
	x.resource.Instance.Name = n
	return x
}

// InjectingInto restricts the binding to dependencies injected into the
// given instance ("bind this only when constructing that").
func (x *Bind) InjectingInto(target inject.Instance) *Bind {
	x.resource.Target = inject.TargetOf(target)
	return x
}

// InPackages restricts the binding to instances constructed in the given
// package paths.
func (x *Bind) InPackages(pkgs ...string) *Bind {
	x.resource.Target.Packages = pkgs
	return x
}

// Per selects the binding's lifecycle scope.
func (x *Bind) Per(scope inject.ScopeName) *Bind {
	x.scope = scope
	return x
}

// Eager marks the binding for construction at the end of bootstrap.
func (x *Bind) Eager() *Bind {
	x.eager = true
	return x
}

// AsContract additionally publishes the binding under each of its
// supertypes admitted by the binder's contract filter, as Contract
// precedence references to the primary instance. Without a filter only
// interface supertypes are covered, since only those are assignable
// targets for the bound value.
func (x *Bind) AsContract() *Bind {
	x.contracts = true
	return x
}

// To terminates the binding with a constant value.
func (x *Bind) To(constant any) {
	x.emit(inject.Constant(constant))
}

// ToFactory terminates the binding with a factory function whose
// parameters are resolved from the injector (see inject.Factory).
func (x *Bind) ToFactory(fn any) {
	x.emit(inject.Factory(fn))
}

// ToReference terminates the binding as an alias resolving the given
// instance instead.
func (x *Bind) ToReference(i inject.Instance) {
	x.emit(inject.ReferenceTo(i))
}

// ToElements terminates the binding with a slice of the given instances,
// each resolved through the injector.
func (x *Bind) ToElements(elements ...inject.Instance) {
	x.emit(inject.Elements(x.resource.Instance.Type.Elem(), elements...))
}

func (x *Bind) emit(s inject.Supplier) {
	x.binder.add(inject.Declaration{
		Resource: x.resource,
		Supplier: s,
		Scope:    x.scope,
		Source:   x.source,
		Eager:    x.eager,
	})
	if !x.contracts {
		return
	}
	admit := x.binder.contractFilter
	if admit == nil {
		admit = func(t inject.Type) bool { return t.RawType().Kind() == reflect.Interface }
	}
	primary := x.resource.Instance
	for _, super := range primary.Type.Supertypes() {
		if super.Equal(primary.Type) {
			continue
		}
		if !admit(super) {
			continue
		}
		source := x.source
		source.Precedence = inject.Contract
		x.binder.add(inject.Declaration{
			Resource: inject.ResourceOf(inject.InstanceOf(primary.Name, super)),
			Supplier: inject.ReferenceTo(primary),
			Scope:    x.scope,
			Source:   source,
		})
	}
}
