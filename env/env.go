// Package env provides the bootstrap environment: string properties plus
// named strategy values that declaration layers consult while assembling a
// container. The resolution core only ever reads properties through
// bootstrap options and treats strategies as opaque.
package env

import "strconv"

// Env is an immutable-after-build set of properties and strategies.
// Properties are flat dotted keys ("inject.default-scope"); strategies are
// arbitrary values, typically functions, looked up by name.
type Env struct {
	props      map[string]string
	strategies map[string]any
}

// New returns an empty environment.
func New() *Env {
	return &Env{
		props:      make(map[string]string),
		strategies: make(map[string]any),
	}
}

// Load builds an environment from the given loaders. Earlier loaders take
// precedence: a key set by the first loader is not overwritten by later
// ones. A loader that cannot find its source is skipped; a loader that
// finds but cannot parse it fails the load.
func Load(loaders ...Loader) (*Env, error) {
	e := New()
	for _, l := range loaders {
		props, err := l.Load()
		if err != nil {
			return nil, err
		}
		for k, v := range props {
			if _, ok := e.props[k]; !ok {
				e.props[k] = v
			}
		}
	}
	return e, nil
}

// Property returns the property value for the key, or def when unset.
func (e *Env) Property(key, def string) string {
	if v, ok := e.props[key]; ok {
		return v
	}
	return def
}

// Bool returns the property parsed as a boolean, or def when unset or
// unparsable.
func (e *Env) Bool(key string, def bool) bool {
	if v, ok := e.props[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the property parsed as an integer, or def when unset or
// unparsable.
func (e *Env) Int(key string, def int) int {
	if v, ok := e.props[key]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// SetProperty sets a property, replacing any loaded value.
func (e *Env) SetProperty(key, value string) *Env {
	e.props[key] = value
	return e
}

// Strategy returns the named strategy value.
func (e *Env) Strategy(name string) (any, bool) {
	v, ok := e.strategies[name]
	return v, ok
}

// SetStrategy registers a strategy value under the given name.
func (e *Env) SetStrategy(name string, value any) *Env {
	e.strategies[name] = value
	return e
}
