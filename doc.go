// Package inject is a lazily resolving dependency-injection container.
// Bindings are declared as (type, name) resources backed by a supplier and
// a lifecycle scope, assembled once into an immutable Injector, and
// resolved on demand: the most applicable binding wins, instances are
// cached per the binding's scope, and structural errors such as cycles,
// missing resources and ambiguous candidates surface as typed errors.
//
// The bind sub-package provides a declaration builder, the env sub-package
// the bootstrap environment. The Injector itself has comprehensive
// documentation about how resolution works.
package inject
