package inject

import (
	"context"
	"fmt"
	"reflect"
)

// Supplier is a binding's construction strategy. Supply is only ever
// invoked through the binding's scope, so implementations do not cache.
type Supplier interface {
	Supply(ctx context.Context, dep Dependency, in *Injector) (any, error)
}

// referencer is implemented by suppliers that are pure aliases to another
// instance. The injector consults it to catch reference loops before
// recursing.
type referencer interface {
	references() Instance
}

// Constant returns a supplier yielding the given value on every call.
func Constant(value any) Supplier {
	return &constantSupplier{value: value}
}

type constantSupplier struct {
	value any
}

func (s *constantSupplier) Supply(ctx context.Context, dep Dependency, in *Injector) (any, error) {
	return s.value, nil
}

func (s *constantSupplier) String() string {
	return fmt.Sprintf("constant %v", s.value)
}

// ReferenceTo returns a supplier that resolves the given instance instead,
// effectively aliasing one resource to another.
func ReferenceTo(i Instance) Supplier {
	return &referenceSupplier{to: i}
}

type referenceSupplier struct {
	to Instance
}

func (s *referenceSupplier) Supply(ctx context.Context, dep Dependency, in *Injector) (any, error) {
	return in.Resolve(ctx, dep.onInstance(s.to))
}

func (s *referenceSupplier) references() Instance {
	return s.to
}

func (s *referenceSupplier) String() string {
	return fmt.Sprintf("reference to %s", s.to)
}

// Factory returns a supplier that calls the given function, resolving each
// parameter from the injector in declaration order. Parameters of type
// context.Context, Dependency and *Injector are passed through instead of
// resolved. The function must return exactly one non-error value and may
// return an error as any other result. Malformed functions panic here, at
// declaration time, in line with the rest of the declaration API.
func Factory(fn any) Supplier {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("inject: Factory argument must be a function, got %v", fnType))
	}

	hasError := false
	results := 0
	for i := 0; i < fnType.NumOut(); i++ {
		out := fnType.Out(i)
		if out == errorType {
			if hasError {
				panic("inject: multiple error results on a factory function not permitted")
			}
			hasError = true
		} else {
			results++
		}
	}
	if results != 1 {
		panic(fmt.Sprintf("inject: factory function must have exactly one non-error result, got %d", results))
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		params[i] = fnType.In(i)
	}

	return &funcSupplier{
		fn:       reflect.ValueOf(fn),
		fnType:   fnType,
		params:   params,
		hasError: hasError,
	}
}

type funcSupplier struct {
	fn       reflect.Value
	fnType   reflect.Type
	params   []reflect.Type
	hasError bool
}

var (
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	dependencyType = reflect.TypeOf(Dependency{})
	injectorType   = reflect.TypeOf((*Injector)(nil))
)

func (s *funcSupplier) Supply(ctx context.Context, dep Dependency, in *Injector) (any, error) {
	args := make([]reflect.Value, len(s.params))
	for i, paramType := range s.params {
		switch paramType {
		case contextType:
			args[i] = reflect.ValueOf(ctx)
		case dependencyType:
			args[i] = reflect.ValueOf(dep)
		case injectorType:
			args[i] = reflect.ValueOf(in)
		default:
			value, err := in.Resolve(ctx, dep.onInstance(AnyOf(Raw(paramType))))
			if err != nil {
				return nil, err
			}
			if value == nil {
				args[i] = reflect.Zero(paramType)
			} else {
				args[i] = reflect.ValueOf(value)
			}
		}
	}

	results := s.fn.Call(args)
	if err := resultError(results); err != nil {
		return nil, err
	}
	for _, result := range results {
		if result.Type() != errorType {
			return result.Interface(), nil
		}
	}
	// Unreachable: construction validated exactly one non-error result.
	return nil, nil
}

// resultError finds the error result of a call, if any.
func resultError(results []reflect.Value) error {
	for _, result := range results {
		if result.Type() == errorType && !result.IsNil() {
			return result.Interface().(error)
		}
	}
	return nil
}

func (s *funcSupplier) String() string {
	return formatSupplierFunc(s.fnType)
}

// Elements returns a supplier producing a slice of the given element type
// with one entry per listed instance, each resolved through the injector in
// order.
func Elements(elem Type, elements ...Instance) Supplier {
	if elem.IsWildcard() {
		panic("inject: Elements requires a concrete element type")
	}
	return &elementsSupplier{elem: elem, elements: elements}
}

type elementsSupplier struct {
	elem     Type
	elements []Instance
}

func (s *elementsSupplier) Supply(ctx context.Context, dep Dependency, in *Injector) (any, error) {
	sliceType := reflect.SliceOf(s.elem.RawType())
	slice := reflect.MakeSlice(sliceType, 0, len(s.elements))
	for _, e := range s.elements {
		value, err := in.Resolve(ctx, dep.onInstance(e))
		if err != nil {
			return nil, err
		}
		if value == nil {
			slice = reflect.Append(slice, reflect.Zero(s.elem.RawType()))
		} else {
			slice = reflect.Append(slice, reflect.ValueOf(value))
		}
	}
	return slice.Interface(), nil
}

func (s *elementsSupplier) String() string {
	return fmt.Sprintf("%d elements of %s", len(s.elements), s.elem)
}
