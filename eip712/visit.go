package eip712

import (
	"fmt"
)

// VisitFunc maps one atomic leaf value. typ is the canonical type string of
// the leaf, for example uint256 or bytes32.
type VisitFunc func(typ string, value any) (any, error)

// Visit rebuilds value as the primary type, replacing every atomic leaf with
// the result of fn. Structs become map[string]any and arrays become []any.
func (e *Encoder) Visit(value any, fn VisitFunc) (any, error) {
	return e.VisitType(e.PrimaryType(), value, fn)
}

// VisitType is Visit for an arbitrary struct or registered field type.
func (e *Encoder) VisitType(typ string, value any, fn VisitFunc) (any, error) {
	d, ok := e.descIndex[typ]
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	return e.visit(d, value, fn, typ)
}

func (e *Encoder) visit(d int, value any, fn VisitFunc, path string) (any, error) {
	desc := &e.descs[d]

	switch desc.kind {
	case kindArray:
		items, err := sliceOf(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		if desc.length >= 0 && len(items) != desc.length {
			return nil, valueError(desc, path, value, fmt.Errorf("%w: got %d elements", ErrLengthMismatch, len(items)))
		}
		out := make([]any, len(items))
		for k, item := range items {
			v, err := e.visit(desc.elem, item, fn, fmt.Sprintf("%s[%d]", path, k))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	case kindStruct:
		fields, err := e.structValues(desc, value, path)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(fields))
		for k, field := range e.types[desc.name] {
			v, err := e.visit(e.fields[desc.strct][k], fields[field.Name], fn, path+"."+field.Name)
			if err != nil {
				return nil, err
			}
			out[field.Name] = v
		}
		return out, nil
	}

	v, err := fn(desc.name, value)
	if err != nil {
		return nil, valueError(desc, path, value, err)
	}
	return v, nil
}
