package eip712

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/zksync/byteutil"
)

// EncodeData returns the encoding of value as the named type. For a struct
// this is its type hash followed by one 32-byte word per field.
func (e *Encoder) EncodeData(typ string, value any) ([]byte, error) {
	d, ok := e.descIndex[typ]
	if !ok {
		return nil, &UnknownTypeError{Type: typ}
	}
	return e.encode(d, value, typ)
}

// HashStruct returns keccak256 of the encoding of value as the named struct.
func (e *Encoder) HashStruct(name string, value any) (common.Hash, error) {
	if _, ok := e.structs[name]; !ok {
		return common.Hash{}, &UnknownTypeError{Type: name}
	}
	enc, err := e.EncodeData(name, value)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// Encode returns the encoding of value as the primary type.
func (e *Encoder) Encode(value any) ([]byte, error) {
	return e.EncodeData(e.PrimaryType(), value)
}

// Hash returns keccak256 of Encode(value).
func (e *Encoder) Hash(value any) (common.Hash, error) {
	return e.HashStruct(e.PrimaryType(), value)
}

func (e *Encoder) encode(d int, value any, path string) ([]byte, error) {
	desc := &e.descs[d]

	switch desc.kind {
	case kindInt:
		n, err := byteutil.ToBigInt(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		if n.Cmp(desc.min) < 0 || n.Cmp(desc.max) > 0 {
			return nil, valueError(desc, path, value, ErrOutOfRange)
		}
		return byteutil.ToTwos256(n), nil

	case kindFixedBytes:
		b, err := byteutil.ToBytes(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		if len(b) != desc.size {
			return nil, valueError(desc, path, value, fmt.Errorf("%w: got %d bytes", ErrLengthMismatch, len(b)))
		}
		return byteutil.ZeroPadRight(b, 32)

	case kindAddress:
		addr, err := byteutil.ToAddress(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		return common.LeftPadBytes(addr.Bytes(), 32), nil

	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, valueError(desc, path, value, ErrTypeMismatch)
		}
		word := make([]byte, 32)
		if b {
			word[31] = 1
		}
		return word, nil

	case kindDynamicBytes:
		b, err := byteutil.ToBytes(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		return crypto.Keccak256(b), nil

	case kindString:
		s, ok := value.(string)
		if !ok {
			return nil, valueError(desc, path, value, ErrTypeMismatch)
		}
		return crypto.Keccak256([]byte(s)), nil

	case kindArray:
		items, err := sliceOf(value)
		if err != nil {
			return nil, valueError(desc, path, value, err)
		}
		if desc.length >= 0 && len(items) != desc.length {
			return nil, valueError(desc, path, value, fmt.Errorf("%w: got %d elements", ErrLengthMismatch, len(items)))
		}
		elemStruct := e.descs[desc.elem].kind == kindStruct
		parts := make([][]byte, len(items))
		for k, item := range items {
			enc, err := e.encode(desc.elem, item, fmt.Sprintf("%s[%d]", path, k))
			if err != nil {
				return nil, err
			}
			if elemStruct {
				enc = crypto.Keccak256(enc)
			}
			parts[k] = enc
		}
		return crypto.Keccak256(byteutil.Concat(parts...)), nil

	case kindStruct:
		fields, err := e.structValues(desc, value, path)
		if err != nil {
			return nil, err
		}
		parts := make([][]byte, 0, len(fields)+1)
		parts = append(parts, e.typeHashes[desc.strct].Bytes())
		for k, field := range e.types[desc.name] {
			fd := e.fields[desc.strct][k]
			enc, err := e.encode(fd, fields[field.Name], path+"."+field.Name)
			if err != nil {
				return nil, err
			}
			if e.descs[fd].kind == kindStruct {
				enc = crypto.Keccak256(enc)
			}
			parts = append(parts, enc)
		}
		return byteutil.Concat(parts...), nil
	}

	return nil, &UnknownTypeError{Type: desc.name}
}

// structValues returns the field values of a struct value, rejecting missing
// and undeclared fields.
func (e *Encoder) structValues(desc *typeDesc, value any, path string) (map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, valueError(desc, path, value, ErrTypeMismatch)
	}
	declared := e.types[desc.name]
	for _, field := range declared {
		if _, ok := m[field.Name]; !ok {
			return nil, valueError(desc, path+"."+field.Name, nil, ErrMissingField)
		}
	}
	if len(m) != len(declared) {
		for key := range m {
			if !hasField(declared, key) {
				return nil, valueError(desc, path+"."+key, m[key], ErrUnexpectedField)
			}
		}
	}
	return m, nil
}

func hasField(fields []Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// sliceOf reads any slice or array value as a list of elements.
func sliceOf(value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, ErrTypeMismatch
	}
	items := make([]any, rv.Len())
	for k := range items {
		items[k] = rv.Index(k).Interface()
	}
	return items, nil
}

func valueError(desc *typeDesc, path string, value any, err error) error {
	return &ValueError{Type: desc.name, Path: path, Value: value, Err: err}
}
