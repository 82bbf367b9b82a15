package inject

import (
	"context"
	"sort"

	"github.com/okvist/go-inject/env"
)

// Option configures Bootstrap.
type Option func(*bootstrapConfig)

type scopeRegistration struct {
	scoping Scoping
	factory func(slots int) Scope
}

type bootstrapConfig struct {
	scopes       map[ScopeName]scopeRegistration
	defaultScope ScopeName
	subContexts  map[Name]*subContext
}

func defaultConfig() *bootstrapConfig {
	cfg := &bootstrapConfig{
		scopes:       make(map[ScopeName]scopeRegistration),
		defaultScope: ScopeApplication,
		subContexts:  make(map[Name]*subContext),
	}
	// Unscoped instances are constructed fresh on each call and become part
	// of whatever requested them, so the stability check does not apply.
	cfg.scopes[ScopeUnscoped] = scopeRegistration{
		scoping: Scoping{Name: ScopeUnscoped, Permanence: 0, IgnoreStability: true},
	}
	cfg.scopes[ScopeApplication] = scopeRegistration{
		scoping: Scoping{Name: ScopeApplication, Permanence: 100},
		factory: NewApplicationScope,
	}
	cfg.scopes[ScopeDependencyType] = scopeRegistration{
		scoping: Scoping{Name: ScopeDependencyType, Permanence: 10},
		factory: NewDependencyTypeScope,
	}
	cfg.scopes[ScopeDependencyInstance] = scopeRegistration{
		scoping: Scoping{Name: ScopeDependencyInstance, Permanence: 10},
		factory: NewDependencyInstanceScope,
	}
	return cfg
}

// WithScope registers a scope under the given name. A nil factory makes the
// scope behave like unscoped (no repository, supplier runs every call) while
// still carrying its own scoping for the stability check.
func WithScope(name ScopeName, scoping Scoping, factory func(slots int) Scope) Option {
	return func(cfg *bootstrapConfig) {
		scoping.Name = name
		cfg.scopes[name] = scopeRegistration{scoping: scoping, factory: factory}
	}
}

// WithDefaultScope sets the scope applied to declarations that name none.
func WithDefaultScope(name ScopeName) Option {
	return func(cfg *bootstrapConfig) {
		cfg.defaultScope = name
	}
}

// WithSerializedApplicationScope swaps the application scope for the
// serialized variant, guaranteeing each supplier runs at most once per slot
// at the cost of holding a per-slot lock during construction. Use when
// suppliers are side-effect-sensitive.
func WithSerializedApplicationScope() Option {
	return func(cfg *bootstrapConfig) {
		reg := cfg.scopes[ScopeApplication]
		reg.factory = NewSerializedApplicationScope
		cfg.scopes[ScopeApplication] = reg
	}
}

// WithSubContext declares a named child injector assembled from its own
// declarations on first access.
func WithSubContext(name Name, decls []Declaration, opts ...Option) Option {
	return func(cfg *bootstrapConfig) {
		cfg.subContexts[name] = &subContext{decls: decls, opts: opts}
	}
}

// WithEnv applies the bootstrap-relevant properties of the environment:
// "inject.default-scope" overrides the default scope name and
// "inject.serialized-application" selects the serialized application
// repository. The core never inspects strategy values; those are consumed
// by declaration-layer packages.
func WithEnv(e *env.Env) Option {
	return func(cfg *bootstrapConfig) {
		if e == nil {
			return
		}
		if scope := e.Property("inject.default-scope", ""); scope != "" {
			cfg.defaultScope = ScopeName(scope)
		}
		if e.Bool("inject.serialized-application", false) {
			WithSerializedApplicationScope()(cfg)
		}
	}
}

// Bootstrap assembles the declarations into an immutable Injector:
//
//  1. stable-sort by (type precision, name precision, target precision,
//     source precedence, declaration order),
//  2. drop declarations fully subsumed by an earlier, stronger one,
//  3. fail on two clashing explicit declarations for one resource,
//  4. assign dense serial IDs and size one repository per scope,
//  5. construct eager bindings.
//
// Bootstrap runs single-threaded; the returned injector is safe for
// concurrent use. A nil supplier is a programming error and panics.
func Bootstrap(ctx context.Context, declarations []Declaration, opts ...Option) (*Injector, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	bindings := make([]Binding, 0, len(declarations))
	for i, d := range declarations {
		if d.Supplier == nil {
			panic("inject: declaration without supplier: " + d.Resource.String())
		}
		scope := d.Scope
		if scope == "" {
			scope = cfg.defaultScope
		}
		bindings = append(bindings, Binding{
			Resource: d.Resource,
			Supplier: d.Supplier,
			Scope:    scope,
			Source:   d.Source,
			Eager:    d.Eager,
			declared: i,
		})
	}

	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].compare(bindings[j]) < 0
	})

	deduped, err := dedupe(bindings)
	if err != nil {
		return nil, err
	}

	scopes := make(map[ScopeName]scopeEntry)
	for i := range deduped {
		deduped[i].Serial = i
		name := deduped[i].Scope
		if _, done := scopes[name]; done {
			deduped[i].Scoping = scopes[name].scoping
			continue
		}
		reg, ok := cfg.scopes[name]
		if !ok {
			return nil, &UnboundScopeError{Scope: name, Resource: deduped[i].Resource}
		}
		entry := scopeEntry{scoping: reg.scoping}
		if reg.factory != nil {
			entry.scope = reg.factory(len(deduped))
		}
		scopes[name] = entry
		deduped[i].Scoping = reg.scoping
	}

	in := &Injector{
		bindings:  deduped,
		scopes:    scopes,
		subs:      cfg.subContexts,
		slotCount: len(deduped),
	}

	if err := in.constructEager(ctx); err != nil {
		return nil, err
	}
	return in, nil
}

// dedupe walks the sorted bindings and drops every entry whose resource is
// already claimed by an earlier, at-least-as-strong one. Two clashing
// claims (both explicit or both required) abort the bootstrap.
func dedupe(sorted []Binding) ([]Binding, error) {
	kept := make([]Binding, 0, len(sorted))
	claimed := make(map[string]Source, len(sorted))
	for _, b := range sorted {
		key := b.Resource.key()
		if earlier, ok := claimed[key]; ok {
			if earlier.Precedence.Clashing(b.Source.Precedence) {
				return nil, &AmbiguousBindingError{
					Resource: b.Resource,
					Sources:  [2]Source{earlier, b.Source},
				}
			}
			// The earlier entry sorted first and therefore subsumes this
			// one; explicit silently replaces implicit and auto bindings.
			continue
		}
		kept = append(kept, b)
		claimed[key] = b.Source
	}
	return kept, nil
}
