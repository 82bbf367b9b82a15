package inject

import (
	"reflect"
	"strings"
)

// Target restricts where a resource is available. The zero value is
// unrestricted. With an Instance set, the resource only serves dependencies
// currently being injected into a matching instance ("bind Bar when
// injecting into Foo"). With Packages set, the instance under construction
// must additionally live in one of the given package paths.
type Target struct {
	Instance Instance
	Packages []string
}

// Anywhere is the unrestricted target.
func Anywhere() Target {
	return Target{}
}

// TargetOf restricts availability to dependencies injected into the given
// instance.
func TargetOf(i Instance) Target {
	return Target{Instance: i}
}

func (t Target) IsRestricted() bool {
	return t.hasInstance() || len(t.Packages) > 0
}

func (t Target) hasInstance() bool {
	return t.Instance.Type.raw != nil
}

// IsApplicableFor reports whether the dependency's injection context
// satisfies this restriction. An unrestricted target matches everything; a
// restricted one requires the instance currently under construction to
// match.
func (t Target) IsApplicableFor(dep Dependency) bool {
	if !t.hasInstance() && len(t.Packages) == 0 {
		return true
	}
	into, ok := dep.Into()
	if !ok {
		return false
	}
	if t.hasInstance() && !into.IsApplicableFor(t.Instance) {
		return false
	}
	if len(t.Packages) > 0 {
		pkg := ""
		if into.Type.raw != nil {
			r := into.Type.raw
			for r.Kind() == reflect.Pointer {
				r = r.Elem()
			}
			pkg = r.PkgPath()
		}
		found := false
		for _, p := range t.Packages {
			if pkg == p || strings.HasSuffix(p, "*") && strings.HasPrefix(pkg, strings.TrimSuffix(p, "*")) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MoreApplicableThan reports whether this target is strictly more specific
// than the other: restricted beats unrestricted, and a restricted instance
// beats a bare package restriction.
func (t Target) MoreApplicableThan(other Target) bool {
	if t.hasInstance() != other.hasInstance() {
		return t.hasInstance()
	}
	if t.hasInstance() && t.Instance.MorePreciseThan(other.Instance) {
		return true
	}
	return len(t.Packages) > 0 && len(other.Packages) == 0
}

func (t Target) String() string {
	if !t.hasInstance() && len(t.Packages) == 0 {
		return "anywhere"
	}
	b := strings.Builder{}
	b.WriteString("into ")
	if t.hasInstance() {
		b.WriteString(t.Instance.String())
	}
	if len(t.Packages) > 0 {
		if t.hasInstance() {
			b.WriteString(" ")
		}
		b.WriteString("in " + strings.Join(t.Packages, ","))
	}
	return b.String()
}

// Resource is the unit actually matched during resolution: an instance plus
// its declared availability.
type Resource struct {
	Instance Instance
	Target   Target
}

func ResourceOf(i Instance) Resource {
	return Resource{Instance: i}
}

// IsApplicableFor reports whether this resource serves the dependency:
// instance match plus target restriction.
func (r Resource) IsApplicableFor(dep Dependency) bool {
	return dep.Instance().IsApplicableFor(r.Instance) && r.Target.IsApplicableFor(dep)
}

// MoreApplicableThan orders competing resources: type specificity first,
// then name precision, then target specificity. Source precedence and
// declaration order are applied by the caller as final tie-breaks.
func (r Resource) MoreApplicableThan(other Resource) bool {
	if r.Instance.MorePreciseThan(other.Instance) {
		return true
	}
	if other.Instance.MorePreciseThan(r.Instance) {
		return false
	}
	return r.Target.MoreApplicableThan(other.Target)
}

// key identifies a resource for deduplication and ambiguity detection
// during assembly.
func (r Resource) key() string {
	return r.Instance.String() + "@" + r.Target.String()
}

func (r Resource) String() string {
	if !r.Target.hasInstance() && len(r.Target.Packages) == 0 {
		return r.Instance.String()
	}
	return r.Instance.String() + " " + r.Target.String()
}
