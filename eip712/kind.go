package eip712

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

type kind uint8

const (
	kindInt kind = iota + 1
	kindFixedBytes
	kindAddress
	kindBool
	kindDynamicBytes
	kindString
	kindArray
	kindStruct
)

// typeDesc is the precomputed encoding strategy for one canonical type string.
type typeDesc struct {
	name string
	kind kind

	// kindInt
	signed   bool
	min, max *big.Int

	// kindFixedBytes
	size int

	// kindArray
	elem   int
	length int // -1 when dynamic

	// kindStruct
	strct int
}

var (
	intPattern    = regexp.MustCompile(`^(u?)int(\d+)$`)
	bytesPattern  = regexp.MustCompile(`^bytes(\d+)$`)
	arrayPattern  = regexp.MustCompile(`^(.*)\[(\d*)\]$`)
	suffixPattern = regexp.MustCompile(`^(\[\d*\])*$`)
)

// splitBase returns the element type of typ with every array suffix removed.
func splitBase(typ string) (string, error) {
	idx := strings.IndexByte(typ, '[')
	if idx < 0 {
		return typ, nil
	}
	if !suffixPattern.MatchString(typ[idx:]) {
		return "", &InvalidTypeError{Type: typ, Reason: "malformed array suffix"}
	}
	return typ[:idx], nil
}

// parseBase builds the descriptor for an atomic type. ok is false when typ is
// not an atomic type name; err is set when it looks like one but carries an
// invalid width.
func parseBase(typ string) (desc typeDesc, ok bool, err error) {
	switch typ {
	case "address":
		return typeDesc{name: typ, kind: kindAddress}, true, nil
	case "bool":
		return typeDesc{name: typ, kind: kindBool}, true, nil
	case "bytes":
		return typeDesc{name: typ, kind: kindDynamicBytes}, true, nil
	case "string":
		return typeDesc{name: typ, kind: kindString}, true, nil
	}

	if m := intPattern.FindStringSubmatch(typ); m != nil {
		width, convErr := strconv.Atoi(m[2])
		if convErr != nil || m[2] != strconv.Itoa(width) || width == 0 || width > 256 || width%8 != 0 {
			return typeDesc{}, true, &InvalidTypeError{Type: typ, Reason: "invalid numeric width"}
		}
		signed := m[1] == ""
		desc := typeDesc{name: typ, kind: kindInt, signed: signed}
		if signed {
			bound := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
			desc.min = new(big.Int).Neg(bound)
			desc.max = bound.Sub(bound, big.NewInt(1))
		} else {
			bound := new(big.Int).Lsh(big.NewInt(1), uint(width))
			desc.min = new(big.Int)
			desc.max = bound.Sub(bound, big.NewInt(1))
		}
		return desc, true, nil
	}

	if m := bytesPattern.FindStringSubmatch(typ); m != nil {
		size, convErr := strconv.Atoi(m[1])
		if convErr != nil || m[1] != strconv.Itoa(size) || size == 0 || size > 32 {
			return typeDesc{}, true, &InvalidTypeError{Type: typ, Reason: "invalid bytes length"}
		}
		return typeDesc{name: typ, kind: kindFixedBytes, size: size}, true, nil
	}

	return typeDesc{}, false, nil
}

// normalizeType rewrites the int and uint aliases to their 256-bit forms,
// keeping any array suffix. A declared struct named int or uint disables the
// rewrite for that name.
func normalizeType(typ string, types Types) string {
	base, suffix := typ, ""
	if idx := strings.IndexByte(typ, '['); idx >= 0 {
		base, suffix = typ[:idx], typ[idx:]
	}
	if base != "int" && base != "uint" {
		return typ
	}
	if _, isStruct := types[base]; isStruct {
		return typ
	}
	return base + "256" + suffix
}
