// Package eip712 derives canonical type graphs for EIP-712 typed structured
// data and encodes value trees into their hash-chained signing form.
package eip712

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrMissingPrimaryType indicates that every declared struct is referenced by another one.
	ErrMissingPrimaryType = errors.New("eip712: missing primary type")

	// ErrReservedDomainType indicates a caller-supplied EIP712Domain declaration.
	ErrReservedDomainType = errors.New("eip712: types must not contain EIP712Domain type")

	// ErrInvalidDomainKey indicates a domain field outside name, version, chainId, verifyingContract and salt.
	ErrInvalidDomainKey = errors.New("eip712: invalid typed-data domain key")

	// ErrOutOfRange indicates an integer outside the bounds of its declared width.
	ErrOutOfRange = errors.New("eip712: value out-of-bounds")

	// ErrLengthMismatch indicates a bytesN or T[N] value of the wrong length.
	ErrLengthMismatch = errors.New("eip712: length mismatch")

	// ErrTypeMismatch indicates a value whose Go shape cannot represent the declared type.
	ErrTypeMismatch = errors.New("eip712: value does not match type")

	// ErrMissingField indicates a struct value without an entry for a declared field.
	ErrMissingField = errors.New("eip712: missing field")

	// ErrUnexpectedField indicates a struct value carrying an undeclared field.
	ErrUnexpectedField = errors.New("eip712: unexpected field")
)

// InvalidTypeError indicates a malformed type string, such as uint7 or bytes33.
type InvalidTypeError struct {
	Type   string
	Reason string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("eip712: invalid type %q: %s", e.Type, e.Reason)
}

// UnknownTypeError indicates a field referencing a struct that is not declared.
type UnknownTypeError struct {
	Struct string
	Type   string
}

func (e *UnknownTypeError) Error() string {
	if e.Struct == "" {
		return fmt.Sprintf("eip712: unknown type %q", e.Type)
	}
	return fmt.Sprintf("eip712: unknown type %q referenced by %q", e.Type, e.Struct)
}

// DuplicateFieldError indicates two fields of one struct sharing a name.
type DuplicateFieldError struct {
	Struct string
	Field  string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("eip712: duplicate field %q in struct %q", e.Field, e.Struct)
}

// SelfReferenceError indicates a struct declaring a field of its own type.
type SelfReferenceError struct {
	Struct string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("eip712: circular type reference to %q", e.Struct)
}

// CycleError indicates a struct reachable from itself. Path starts and ends
// with the same struct name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("eip712: circular type reference: %s", strings.Join(e.Path, " -> "))
}

// AmbiguousPrimaryTypeError indicates more than one struct that no other
// struct references.
type AmbiguousPrimaryTypeError struct {
	Candidates []string
}

func (e *AmbiguousPrimaryTypeError) Error() string {
	return fmt.Sprintf("eip712: ambiguous primary types or unused types: %s", strings.Join(e.Candidates, ", "))
}

// ValueError reports a value that could not be encoded as its declared type.
type ValueError struct {
	Type  string
	Path  string
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("eip712: invalid value for %s at %q: %v", e.Type, e.Path, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// UnresolvedNameError indicates a name whose resolver returned the zero address.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("eip712: unconfigured name %q", e.Name)
}
