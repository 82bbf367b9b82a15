package inject

import (
	"reflect"
	"strings"
	"sync"
)

// Type is an explicit generic-type descriptor. The raw reflect.Type gives
// identity, the argument list models type arguments as a tree owned by this
// package (reflect cannot decompose instantiated generics), and dims counts
// slice dimensions so element covariance can be applied where Go's native
// assignability would refuse it.
//
// Types are immutable values; all "modifiers" return a copy.
type Type struct {
	raw  reflect.Type
	args []Type
	// bound marks an upper-bounded argument: a binding argument declared
	// as UpperBound(T) is served by T and any type assignable to T.
	bound bool
	dims  int
}

// Raw returns the Type for a reflect.Type. Slice types are normalized into
// the element type plus a dimension count so that []Sub can be matched
// covariantly against []Super.
func Raw(t reflect.Type) Type {
	if t == nil {
		panic("inject: Raw called with nil reflect.Type")
	}
	dims := 0
	for t.Kind() == reflect.Slice {
		dims++
		t = t.Elem()
	}
	return Type{raw: t, dims: dims}
}

// TypeOf returns the Type descriptor for the Go type T.
func TypeOf[T any]() Type {
	return Raw(reflect.TypeOf((*T)(nil)).Elem())
}

// Wildcard is the unconstrained type argument. It is the least specific
// argument and is applicable for anything.
func Wildcard() Type {
	return Type{}
}

// Parametized returns a copy of this type carrying the given type
// arguments. The raw identity is unchanged; arguments only participate in
// matching and specificity.
func (t Type) Parametized(args ...Type) Type {
	if t.IsWildcard() {
		panic("inject: cannot parametize the wildcard type")
	}
	cp := make([]Type, len(args))
	copy(cp, args)
	t.args = cp
	return t
}

// AsUpperBound returns a copy of this type acting as an upper-bounded
// argument ("anything assignable to this").
func (t Type) AsUpperBound() Type {
	t.bound = true
	return t
}

// ArrayOf returns the type of a slice of the given element type.
func ArrayOf(elem Type) Type {
	elem.dims++
	return elem
}

// Elem returns the element type of a slice type. It panics when the type
// has no array dimension.
func (t Type) Elem() Type {
	if t.dims == 0 {
		panic("inject: Elem of non-array type " + t.String())
	}
	t.dims--
	return t
}

func (t Type) IsWildcard() bool {
	return t.raw == nil
}

func (t Type) IsArray() bool {
	return t.dims > 0
}

func (t Type) IsUpperBound() bool {
	return t.bound
}

func (t Type) Parameterized() bool {
	return len(t.args) > 0
}

// RawType returns the raw reflect type, including slice dimensions, as Go
// reflection sees it. The wildcard has no raw type and yields nil.
func (t Type) RawType() reflect.Type {
	if t.raw == nil {
		return nil
	}
	r := t.raw
	for i := 0; i < t.dims; i++ {
		r = reflect.SliceOf(r)
	}
	return r
}

// Args returns a copy of the type arguments.
func (t Type) Args() []Type {
	cp := make([]Type, len(t.args))
	copy(cp, t.args)
	return cp
}

func (t Type) Equal(other Type) bool {
	if t.raw != other.raw || t.dims != other.dims || t.bound != other.bound || len(t.args) != len(other.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(other.args[i]) {
			return false
		}
	}
	return true
}

// AssignableTo reports whether a value of this type can be used where the
// other type is expected. Array dimensions must agree and are covariant in
// the element; raw assignability follows Go reflection; type arguments are
// compared only once the raw types agree, and then require equality unless
// the expected argument is a wildcard or an upper bound.
func (t Type) AssignableTo(other Type) bool {
	if other.IsWildcard() {
		return true
	}
	if t.IsWildcard() {
		return false
	}
	if t.dims != other.dims {
		return false
	}
	if t.raw == other.raw {
		return t.argsApplicableTo(other)
	}
	if !rawAssignable(t.raw, other.raw) {
		return false
	}
	if !other.Parameterized() {
		return true
	}
	// The expected type is a parameterized ancestor: locate it among this
	// type's supertypes and compare the arguments there.
	for _, s := range t.Supertypes() {
		if s.raw == other.raw && s.argsApplicableTo(other) {
			return true
		}
	}
	return false
}

func (t Type) argsApplicableTo(other Type) bool {
	if !other.Parameterized() {
		return true
	}
	if !t.Parameterized() {
		// An unparameterized type is effectively parameterized with
		// wildcards and cannot promise the expected arguments.
		return false
	}
	if len(t.args) != len(other.args) {
		return false
	}
	for i := range t.args {
		a, o := t.args[i], other.args[i]
		switch {
		case o.IsWildcard():
			// applicable for anything
		case o.bound:
			unbounded := o
			unbounded.bound = false
			if !a.AssignableTo(unbounded) {
				return false
			}
		default:
			if !a.Equal(o) {
				return false
			}
		}
	}
	return true
}

// MoreSpecificThan reports whether this type is strictly more specific than
// the other. A subtype is more specific than its supertype; with equal raw
// types a concrete argument beats an upper bound, which beats a wildcard,
// and a parameterized type beats an unparameterized one. Incomparable types
// yield false in both directions, which callers must treat as a tie.
func (t Type) MoreSpecificThan(other Type) bool {
	if t.Equal(other) {
		return false
	}
	if t.IsWildcard() || other.IsWildcard() {
		return other.IsWildcard() && !t.IsWildcard()
	}
	if t.dims != other.dims {
		return false
	}
	if t.raw == other.raw {
		if t.bound != other.bound {
			// The concrete bound is more specific than the wildcard form.
			return other.bound && !t.bound
		}
		return t.argsMoreSpecificThan(other)
	}
	return rawAssignable(t.raw, other.raw) && !rawAssignable(other.raw, t.raw)
}

func (t Type) argsMoreSpecificThan(other Type) bool {
	if !t.Parameterized() || !other.Parameterized() {
		return t.Parameterized() && !other.Parameterized()
	}
	if len(t.args) != len(other.args) {
		return false
	}
	strict := false
	for i := range t.args {
		a, o := t.args[i], other.args[i]
		if a.Equal(o) {
			continue
		}
		if a.MoreSpecificThan(o) {
			strict = true
			continue
		}
		return false
	}
	return strict
}

// Supertypes enumerates this type and its ancestors. The Go rendition of
// the ancestor chain is struct embedding: every embedded (anonymous) field
// type is an ancestor, transitively, with pointer targets unwrapped. The
// universal root `any` never appears so that contract bindings cannot
// accidentally cover everything.
func (t Type) Supertypes() []Type {
	if t.IsWildcard() || t.IsArray() {
		return []Type{t}
	}
	seen := map[reflect.Type]bool{t.raw: true}
	types := []Type{t}
	collectEmbedded(t.raw, seen, &types)
	return types
}

func collectEmbedded(r reflect.Type, seen map[reflect.Type]bool, out *[]Type) {
	s := r
	if s.Kind() == reflect.Pointer {
		s = s.Elem()
	}
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft == anyType || seen[ft] {
			continue
		}
		seen[ft] = true
		*out = append(*out, Type{raw: ft})
		collectEmbedded(ft, seen, out)
	}
}

func (t Type) String() string {
	if t.IsWildcard() {
		return "?"
	}
	b := strings.Builder{}
	for i := 0; i < t.dims; i++ {
		b.WriteString("[]")
	}
	if t.bound {
		b.WriteString("? extends ")
	}
	b.WriteString(t.raw.String())
	if len(t.args) > 0 {
		b.WriteString("<")
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(a.String())
		}
		b.WriteString(">")
	}
	return b.String()
}

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// rawAssignability is consulted on every candidate filter, so the reflect
// answer is cached per type pair.
type rawAssignKey struct {
	from, to reflect.Type
}

var rawAssignCache = struct {
	mu    sync.RWMutex
	cache map[rawAssignKey]bool
}{cache: make(map[rawAssignKey]bool)}

func rawAssignable(from, to reflect.Type) bool {
	if from == to {
		return true
	}
	key := rawAssignKey{from: from, to: to}

	rawAssignCache.mu.RLock()
	result, ok := rawAssignCache.cache[key]
	rawAssignCache.mu.RUnlock()
	if ok {
		return result
	}

	result = from.AssignableTo(to)

	rawAssignCache.mu.Lock()
	rawAssignCache.cache[key] = result
	rawAssignCache.mu.Unlock()
	return result
}
