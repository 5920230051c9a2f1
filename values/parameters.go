package values

import "fmt"

// NamedValue binds a Value to a parameter name.
type NamedValue struct {
	Name  string
	Value Value
}

// Named returns a named parameter binding, for statements using named
// placeholders instead of positional ones.
func Named(name string, v any) (NamedValue, error) {
	value, err := Of(v)
	if err != nil {
		return NamedValue{}, err
	}
	return NamedValue{Name: name, Value: value}, nil
}

// Parameters is the set of bindings attached to a prepared statement
// before execution. A statement keeps its bindings until it is re-bound
// or closed. Positional and named bindings are mutually exclusive.
type Parameters struct {
	positional []Value
	named      map[string]Value
}

// NoParams is the empty parameter set.
var NoParams = Parameters{}

// Positional returns a positional parameter set.
func Positional(vals ...Value) Parameters {
	return Parameters{positional: vals}
}

// FromArgs converts native Go arguments into a parameter set. A
// NamedValue argument produces a named binding; anything else binds
// positionally through Of. Mixing the two styles is an error.
func FromArgs(args ...any) (Parameters, error) {
	var params Parameters
	for i, arg := range args {
		if named, ok := arg.(NamedValue); ok {
			if params.named == nil {
				params.named = make(map[string]Value, len(args))
			}
			params.named[named.Name] = named.Value
			continue
		}
		value, err := Of(arg)
		if err != nil {
			return Parameters{}, fmt.Errorf("argument %d: %w", i, err)
		}
		params.positional = append(params.positional, value)
	}
	if len(params.positional) > 0 && len(params.named) > 0 {
		return Parameters{}, fmt.Errorf("values: cannot mix positional and named parameters")
	}
	return params, nil
}

// Len returns the number of bindings.
func (p Parameters) Len() int {
	if p.named != nil {
		return len(p.named)
	}
	return len(p.positional)
}

// IsEmpty reports whether the parameter set has no bindings.
func (p Parameters) IsEmpty() bool { return p.Len() == 0 }

// At returns the positional binding at index i.
func (p Parameters) At(i int) (Value, bool) {
	if i < 0 || i >= len(p.positional) {
		return Value{}, false
	}
	return p.positional[i], true
}

// Get returns the named binding for name.
func (p Parameters) Get(name string) (Value, bool) {
	v, ok := p.named[name]
	return v, ok
}

// Names returns the names of all named bindings, in unspecified order.
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p.named))
	for name := range p.named {
		names = append(names, name)
	}
	return names
}

// Values returns the positional bindings in order.
func (p Parameters) Values() []Value { return p.positional }
