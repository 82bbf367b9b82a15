package inject

// Precedence classifies where a declaration came from and how strongly it
// claims its resource. Higher values beat lower ones during assembly and
// resolution tie-breaks, so an explicit bind silently replaces an
// auto-discovered or implicit one.
type Precedence int

const (
	// Auto marks declarations discovered by scanning rather than written
	// down. Weakest claim; anything else overrides it.
	Auto Precedence = iota

	// Contract marks the derived bindings a primary declaration makes for
	// its supertypes.
	Contract

	// Provided marks declarations offered as fallbacks that only take
	// effect when nothing else serves the resource.
	Provided

	// Implicit marks declarations added as a side effect of another bind.
	Implicit

	// Explicit marks declarations written by the user. Two explicit
	// declarations for the same resource are a bootstrap error.
	Explicit

	// Required marks declarations that must survive assembly; they behave
	// like Explicit but outrank it.
	Required
)

func (p Precedence) String() string {
	switch p {
	case Auto:
		return "auto"
	case Contract:
		return "contract"
	case Provided:
		return "provided"
	case Implicit:
		return "implicit"
	case Explicit:
		return "explicit"
	case Required:
		return "required"
	}
	return "unknown"
}

// Clashing reports whether two declarations of this and the other
// precedence for the same resource constitute an ambiguity instead of an
// override. Only the strong classes clash with themselves.
func (p Precedence) Clashing(other Precedence) bool {
	if p != other {
		return false
	}
	return p == Explicit || p == Required
}

// Source records the provenance of a declaration: an identifier for error
// messages (typically the declaring module) and the precedence class used
// during assembly and resolution.
type Source struct {
	Ident      string
	Precedence Precedence
}

func (s Source) String() string {
	if s.Ident == "" {
		return s.Precedence.String()
	}
	return s.Ident + " (" + s.Precedence.String() + ")"
}
