package eip712

// DomainTypeName is the reserved name of the synthetic domain struct.
const DomainTypeName = "EIP712Domain"

// Field is one member of a struct declaration.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types maps struct names to their ordered fields. Field order is
// significant: it is the encoding order and appears verbatim in the encoded
// type string.
type Types map[string][]Field

// Copy returns a deep copy of t.
func (t Types) Copy() Types {
	out := make(Types, len(t))
	for name, fields := range t {
		out[name] = append([]Field(nil), fields...)
	}
	return out
}
