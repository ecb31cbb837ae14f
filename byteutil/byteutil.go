// Package byteutil converts between the numeric, hex-string and byte-slice
// representations used by the typed-data encoder and the transaction codec.
package byteutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

var (
	// ErrInvalidHex indicates a string that is not 0x-prefixed even-length hex.
	ErrInvalidHex = errors.New("byteutil: invalid hex string")

	// ErrInvalidNumber indicates a value that cannot be read as an integer.
	ErrInvalidNumber = errors.New("byteutil: invalid numeric value")

	// ErrInvalidAddress indicates a value that is not a 20-byte address.
	ErrInvalidAddress = errors.New("byteutil: invalid address")

	// ErrBadChecksum indicates a mixed-case address whose EIP-55 checksum does not match.
	ErrBadChecksum = errors.New("byteutil: bad address checksum")

	// ErrTooLong indicates padding to a size smaller than the input.
	ErrTooLong = errors.New("byteutil: value exceeds target length")
)

// ToBigInt reads v as an arbitrary-precision integer. The result never
// aliases a *big.Int owned by the caller.
func ToBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: <nil>", ErrInvalidNumber)
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("%w: <nil>", ErrInvalidNumber)
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case *hexutil.Big:
		if n == nil {
			return nil, fmt.Errorf("%w: <nil>", ErrInvalidNumber)
		}
		return new(big.Int).Set(n.ToInt()), nil
	case hexutil.Big:
		return new(big.Int).Set(n.ToInt()), nil
	case *math.HexOrDecimal256:
		if n == nil {
			return nil, fmt.Errorf("%w: <nil>", ErrInvalidNumber)
		}
		return new(big.Int).Set((*big.Int)(n)), nil
	case hexutil.Uint64:
		return new(big.Int).SetUint64(uint64(n)), nil
	case json.Number:
		return parseBigString(string(n))
	case string:
		return parseBigString(n)
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("%w: non-integral float %v", ErrInvalidNumber, n)
		}
		return big.NewInt(int64(n)), nil
	case bool:
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, n)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumber, v)
}

// parseBigString accepts decimal and 0x-prefixed hex, each optionally
// preceded by a single minus sign.
func parseBigString(s string) (*big.Int, error) {
	str := strings.TrimSpace(s)
	neg := strings.HasPrefix(str, "-")
	if neg {
		str = str[1:]
	}
	if str == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	base := 10
	if has0xPrefix(str) {
		str = str[2:]
		base = 16
		if str == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
	}

	// SetString takes its own sign; only the single leading minus is allowed.
	if str[0] == '+' || str[0] == '-' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	result, ok := new(big.Int).SetString(str, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if neg {
		result.Neg(result)
	}
	return result, nil
}

// ToBytes reads v as a byte slice. Hex strings must carry the 0x prefix and
// an even number of digits. The result is always a fresh copy.
func ToBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: <nil>", ErrInvalidHex)
	case []byte:
		return common.CopyBytes(b), nil
	case hexutil.Bytes:
		return common.CopyBytes(b), nil
	case string:
		if !IsHexString(b, -1) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHex, b)
		}
		return hexutil.Decode(b)
	case common.Hash:
		return b.Bytes(), nil
	case *common.Hash:
		if b == nil {
			return nil, fmt.Errorf("%w: <nil>", ErrInvalidHex)
		}
		return b.Bytes(), nil
	case common.Address:
		return b.Bytes(), nil
	case *common.Address:
		if b == nil {
			return nil, fmt.Errorf("%w: <nil>", ErrInvalidHex)
		}
		return b.Bytes(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		for i := range out {
			out[i] = byte(rv.Index(i).Uint())
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidHex, v)
}

// IsHexString reports whether s is 0x-prefixed even-length hex. When size is
// non-negative the decoded length must equal size bytes.
func IsHexString(s string, size int) bool {
	if !has0xPrefix(s) {
		return false
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexCharacter(digits[i]) {
			return false
		}
	}
	return size < 0 || len(digits) == 2*size
}

// ZeroPadLeft left-pads b with zeros to size bytes.
func ZeroPadLeft(b []byte, size int) ([]byte, error) {
	if len(b) > size {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(b), size)
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out, nil
}

// ZeroPadRight right-pads b with zeros to size bytes.
func ZeroPadRight(b []byte, size int) ([]byte, error) {
	if len(b) > size {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLong, len(b), size)
	}
	out := make([]byte, size)
	copy(out, b)
	return out, nil
}

// Concat joins parts into a single new slice.
func Concat(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// StripZeros drops leading zero bytes.
func StripZeros(b []byte) []byte {
	for i, c := range b {
		if c != 0 {
			return b[i:]
		}
	}
	return b[len(b):]
}

// MinimalBytes returns the big-endian bytes of a non-negative n without
// leading zeros. Zero and nil both yield an empty slice, which is how RLP
// represents the integer zero.
func MinimalBytes(n *big.Int) []byte {
	if n == nil || n.Sign() == 0 {
		return []byte{}
	}
	return n.Bytes()
}

// ToTwos256 returns the 32-byte two's complement encoding of n.
func ToTwos256(n *big.Int) []byte {
	return math.U256Bytes(new(big.Int).Set(n))
}

// ToAddress reads v as a 20-byte address. Mixed-case hex strings must carry a
// valid EIP-55 checksum; all-lowercase and all-uppercase strings are accepted
// as-is.
func ToAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		if a == nil {
			return common.Address{}, fmt.Errorf("%w: <nil>", ErrInvalidAddress)
		}
		return *a, nil
	case string:
		if !IsHexString(a, common.AddressLength) {
			return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, a)
		}
		addr := common.HexToAddress(a)
		digits := a[2:]
		if digits != strings.ToLower(digits) && digits != strings.ToUpper(digits) && addr.Hex() != "0x"+digits {
			return common.Address{}, fmt.Errorf("%w: %q", ErrBadChecksum, a)
		}
		return addr, nil
	}

	b, err := ToBytes(v)
	if err != nil || len(b) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, v)
	}
	return common.BytesToAddress(b), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
