package inject

import "strings"

// Name is the case-insensitive discriminator used when multiple instances
// are bound for the same Type. Two sentinel values exist: Default (the
// empty string), which is the most precise name of all, and Any ("*"),
// which matches everything and is the least precise.
//
// A name ending in '*' is a prefix pattern: "jdbc*" is applicable for
// "jdbc", "jdbc-main" and so on. Longer prefixes are more precise than
// shorter ones; two disjoint prefixes of equal length are incomparable.
type Name string

const (
	// Default is used when no name is given. It is the most precise name.
	Default Name = ""

	// Any matches every requested name. It is the least precise name.
	Any Name = "*"
)

// Named returns the Name for the given string. Names are case-insensitive;
// the value is folded to lower case. A blank string yields Default.
func Named(name string) Name {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default
	}
	return Name(strings.ToLower(name))
}

// Prefixed returns a prefix pattern name matching every name that starts
// with the given prefix. A blank prefix yields Any.
func Prefixed(prefix string) Name {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return Any
	}
	return Name(strings.ToLower(prefix) + "*")
}

func (n Name) IsAny() bool {
	return n == Any
}

func (n Name) IsDefault() bool {
	return n == Default
}

// IsPattern reports whether the name is a prefix pattern (ends in '*').
// Any is considered a pattern with an empty prefix.
func (n Name) IsPattern() bool {
	return strings.HasSuffix(string(n), "*")
}

// IsApplicableFor reports whether a dependency requested with this name is
// served by a binding declared with the given name. Any on either side
// matches, otherwise the declared name must be equal to the requested one
// or be a prefix pattern covering it.
func (n Name) IsApplicableFor(declared Name) bool {
	if n.IsAny() || declared.IsAny() || n == declared {
		return true
	}
	if declared.IsPattern() {
		return strings.HasPrefix(string(n), strings.TrimSuffix(string(declared), "*"))
	}
	return false
}

// MorePreciseThan reports whether this name is strictly more precise than
// the other. Default beats everything, everything beats Any, and between
// two patterns the longer one wins only if it extends the shorter. The
// result is a strict partial order: two unrelated names are incomparable
// and this returns false both ways.
func (n Name) MorePreciseThan(other Name) bool {
	if n.IsDefault() || other.IsDefault() {
		return !other.IsDefault() && n.IsDefault()
	}
	if n.IsAny() || other.IsAny() {
		return !n.IsAny() && other.IsAny()
	}
	if n == other {
		return false
	}
	if n.IsPattern() && other.IsPattern() {
		return len(n) > len(other) && strings.HasPrefix(string(n), strings.TrimSuffix(string(other), "*"))
	}
	// A concrete name is more precise than a pattern covering it.
	if other.IsPattern() {
		return n.IsApplicableFor(other)
	}
	if n.IsPattern() {
		return false
	}
	// Two distinct concrete names are incomparable.
	return false
}

func (n Name) String() string {
	return string(n)
}
