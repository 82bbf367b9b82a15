package inject

// Instance is the (Name, Type) identity key describing what is requested or
// provided. It is an immutable value.
type Instance struct {
	Name Name
	Type Type
}

// AnyOf returns the instance matching any binding of the given type,
// regardless of its name. This is what plain by-type requests use.
func AnyOf(t Type) Instance {
	return Instance{Name: Any, Type: t}
}

// DefaultInstanceOf returns the unnamed instance of the given type.
func DefaultInstanceOf(t Type) Instance {
	return Instance{Name: Default, Type: t}
}

// InstanceOf returns the named instance of the given type.
func InstanceOf(name Name, t Type) Instance {
	return Instance{Name: name, Type: t}
}

func (i Instance) Equal(other Instance) bool {
	return i.Name == other.Name && i.Type.Equal(other.Type)
}

// IsApplicableFor reports whether a dependency requested as this instance
// is served by a binding declared for the given instance: the requested
// type must be assignable to the declared type (covariant match) and the
// names must match per Name.IsApplicableFor.
func (i Instance) IsApplicableFor(declared Instance) bool {
	return i.Name.IsApplicableFor(declared.Name) && i.Type.AssignableTo(declared.Type)
}

// MorePreciseThan reports whether this instance is strictly more precise
// than the other. Type specificity dominates; names only break type ties.
func (i Instance) MorePreciseThan(other Instance) bool {
	if i.Type.MoreSpecificThan(other.Type) {
		return true
	}
	if other.Type.MoreSpecificThan(i.Type) {
		return false
	}
	return i.Name.MorePreciseThan(other.Name)
}

func (i Instance) String() string {
	if i.Name.IsDefault() {
		return i.Type.String()
	}
	return i.Name.String() + " " + i.Type.String()
}
