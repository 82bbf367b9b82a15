package inject

import (
	"fmt"
	"reflect"
	"strings"
)

// Status is a diagnostic tool that returns a string describing the
// assembled bindings in resolution order: serial, resource, scope, source
// and the supplier behind it. The output is stable, so it is usable in
// tests and error reports.
func (in *Injector) Status() string {
	result := strings.Builder{}
	for i := range in.bindings {
		b := &in.bindings[i]
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(fmt.Sprintf("%d %s - scope: %s - source: %s - supplier: %s",
			b.Serial, b.Resource, b.Scope, b.Source, formatSupplierDebug(b.Supplier)))
	}
	return result.String()
}

// formatSupplierDebug returns a printable representation of a supplier.
// Function suppliers print their signature instead of the raw address so
// the output is deterministic.
func formatSupplierDebug(s Supplier) string {
	if s == nil {
		return "-"
	}
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return reflect.TypeOf(s).String()
}

// formatSupplierFunc renders a factory function's signature.
func formatSupplierFunc(fnType reflect.Type) string {
	builder := strings.Builder{}
	builder.WriteString("(")
	for i := 0; i < fnType.NumIn(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(fnType.In(i).String())
	}
	builder.WriteString(") ")
	for i := 0; i < fnType.NumOut(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(fnType.Out(i).String())
	}
	return builder.String()
}
