package inject

import "fmt"

// Declaration is one raw binding declaration as handed to Bootstrap,
// typically produced by the bind package but constructible directly. The
// declaration order within the slice is the final resolution tie-break.
type Declaration struct {
	Resource Resource
	Supplier Supplier
	// Scope names the lifecycle policy. Empty means the bootstrap default.
	Scope ScopeName
	Source Source
	// Eager bindings are constructed at the end of bootstrap instead of on
	// first resolution.
	Eager bool
}

// Declare is a convenience constructor for the common explicit case.
func Declare(r Resource, s Supplier) Declaration {
	return Declaration{Resource: r, Supplier: s, Source: Source{Precedence: Explicit}}
}

// Binding is an assembled declaration: deduplicated, scoped and assigned
// its serial slot. Bindings are immutable once Bootstrap returns.
type Binding struct {
	Resource Resource
	Supplier Supplier
	Scope    ScopeName
	Scoping  Scoping
	Source   Source
	// Serial is the dense slot ID, unique within the injector.
	Serial int
	Eager  bool

	declared int
}

func (b Binding) String() string {
	return fmt.Sprintf("%d %s %s %s", b.Serial, b.Resource, b.Source, b.Scoping)
}

// moreApplicableThan orders competing bindings: resource applicability
// (type, name, target) first, then source precedence.
func (b Binding) moreApplicableThan(other Binding) bool {
	if b.Resource.MoreApplicableThan(other.Resource) {
		return true
	}
	if other.Resource.MoreApplicableThan(b.Resource) {
		return false
	}
	return b.Source.Precedence > other.Source.Precedence
}

// compare is the total order used for the bootstrap sort. It starts with
// the applicability partial order and falls back to deterministic string
// and declaration-index comparisons so that equal-resource declarations end
// up adjacent and the overall order is stable across runs.
func (b Binding) compare(other Binding) int {
	if b.moreApplicableThan(other) {
		return -1
	}
	if other.moreApplicableThan(b) {
		return 1
	}
	if c := compareStrings(b.Resource.Instance.String(), other.Resource.Instance.String()); c != 0 {
		return c
	}
	if c := compareStrings(b.Resource.Target.String(), other.Resource.Target.String()); c != 0 {
		return c
	}
	if b.declared != other.declared {
		if b.declared < other.declared {
			return -1
		}
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
