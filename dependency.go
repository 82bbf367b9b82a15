package inject

import "strings"

// Injection is one frame of the in-progress construction chain: the
// instance being built, the serial slot it will occupy and the scoping of
// its binding.
type Injection struct {
	Target  Instance
	Serial  int
	Scoping Scoping
}

// Dependency is a requested instance together with the injection context it
// is requested in. The context - the chain of instances currently being
// constructed - enables target-restricted bindings and is how construction
// cycles are caught. Dependencies are immutable; extending the chain
// returns a new value, so concurrent resolutions never share state.
type Dependency struct {
	instance Instance
	chain    []Injection
	// optional requests yield the zero value instead of a NoResourceError
	// when nothing matches.
	optional bool
}

// DependencyOn builds the dependency requesting the given instance with an
// empty injection context.
func DependencyOn(i Instance) Dependency {
	return Dependency{instance: i}
}

// DependencyOf builds the dependency requesting any instance of the given
// type.
func DependencyOf(t Type) Dependency {
	return DependencyOn(AnyOf(t))
}

func (d Dependency) Instance() Instance {
	return d.instance
}

func (d Dependency) Type() Type {
	return d.instance.Type
}

func (d Dependency) Name() Name {
	return d.instance.Name
}

// Named returns a copy of the dependency requesting the given name instead.
func (d Dependency) Named(n Name) Dependency {
	d.instance.Name = n
	return d
}

// Optional returns a copy of the dependency that resolves to the zero value
// of the requested type when no resource matches instead of failing.
func (d Dependency) Optional() Dependency {
	d.optional = true
	return d
}

func (d Dependency) IsOptional() bool {
	return d.optional
}

// Into returns the instance currently under construction, if any. This is
// what target-restricted bindings are checked against.
func (d Dependency) Into() (Instance, bool) {
	if len(d.chain) == 0 {
		return Instance{}, false
	}
	return d.chain[len(d.chain)-1].Target, true
}

// IntoScoping returns the scoping of the binding currently being
// constructed, used for the stability check between scopes.
func (d Dependency) IntoScoping() (Scoping, bool) {
	if len(d.chain) == 0 {
		return Scoping{}, false
	}
	return d.chain[len(d.chain)-1].Scoping, true
}

// Chain returns a copy of the injection chain, outermost first.
func (d Dependency) Chain() []Injection {
	cp := make([]Injection, len(d.chain))
	copy(cp, d.chain)
	return cp
}

// ChainContains reports whether the given instance is already being
// constructed somewhere up the chain.
func (d Dependency) ChainContains(i Instance) bool {
	for _, inj := range d.chain {
		if inj.Target.Equal(i) {
			return true
		}
	}
	return false
}

// InjectingInto extends the injection context with the binding about to be
// constructed, so that nested resolutions see the new target. A serial
// already present in the chain means the binding depends on itself,
// directly or through intermediaries, and fails with DependencyCycleError.
func (d Dependency) InjectingInto(target Instance, serial int, scoping Scoping) (Dependency, error) {
	for _, inj := range d.chain {
		if inj.Serial == serial {
			return Dependency{}, &DependencyCycleError{Dependency: d, Target: target}
		}
	}
	chain := make([]Injection, len(d.chain), len(d.chain)+1)
	copy(chain, d.chain)
	d.chain = append(chain, Injection{Target: target, Serial: serial, Scoping: scoping})
	return d, nil
}

// onInstance retargets the request while keeping context and options. Used
// by reference suppliers and nested parameter resolution.
func (d Dependency) onInstance(i Instance) Dependency {
	d.instance = i
	d.optional = false
	return d
}

func (d Dependency) String() string {
	if len(d.chain) == 0 {
		return d.instance.String()
	}
	b := strings.Builder{}
	for _, inj := range d.chain {
		b.WriteString(inj.Target.String())
		b.WriteString(" -> ")
	}
	b.WriteString(d.instance.String())
	return b.String()
}
