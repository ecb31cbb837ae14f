// Package signature holds secp256k1 ECDSA signatures in the r, s, v form
// used by Ethereum wallets.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/zksync/byteutil"
)

// ErrInvalidLength indicates raw signature bytes that are neither 64 nor 65 bytes long.
var ErrInvalidLength = errors.New("signature: invalid raw signature length")

// Signature is an immutable r, s, v triple with v normalized to 27 or 28.
type Signature struct {
	r, s common.Hash
	v    byte
}

// NormalizeV maps a recovery value to 27 or 28. 0 and 27 map to 27, 1 and
// 28 map to 28, and any other value maps by parity the way EIP-155 values do.
func NormalizeV(v uint64) byte {
	switch v {
	case 0, 27:
		return 27
	case 1, 28:
		return 28
	}
	if v%2 == 1 {
		return 27
	}
	return 28
}

// FromBytes reads a 65-byte r‖s‖v signature or a 64-byte EIP-2098 compact
// signature.
func FromBytes(raw []byte) (Signature, error) {
	var sig Signature
	switch len(raw) {
	case 64:
		copy(sig.r[:], raw[:32])
		copy(sig.s[:], raw[32:])
		sig.v = 27
		if sig.s[0]&0x80 != 0 {
			sig.v = 28
			sig.s[0] &= 0x7f
		}
	case 65:
		copy(sig.r[:], raw[:32])
		copy(sig.s[:], raw[32:64])
		sig.v = NormalizeV(uint64(raw[64]))
	default:
		return Signature{}, fmt.Errorf("%w: %d", ErrInvalidLength, len(raw))
	}
	return sig, nil
}

// FromHex reads a 0x-prefixed hex signature.
func FromHex(s string) (Signature, error) {
	raw, err := byteutil.ToBytes(s)
	if err != nil {
		return Signature{}, err
	}
	return FromBytes(raw)
}

// FromValues builds a signature from its components.
func FromValues(r, s common.Hash, v uint64) Signature {
	return Signature{r: r, s: s, v: NormalizeV(v)}
}

// FromBigValues builds a signature from integer components. r and s must fit
// in 32 bytes.
func FromBigValues(r, s, v *big.Int) (Signature, error) {
	if r == nil || s == nil || v == nil {
		return Signature{}, fmt.Errorf("%w: missing component", ErrInvalidLength)
	}
	if r.Sign() < 0 || s.Sign() < 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return Signature{}, fmt.Errorf("%w: component exceeds 32 bytes", ErrInvalidLength)
	}
	recovery := uint64(28)
	if v.IsUint64() {
		recovery = v.Uint64()
	} else if v.Bit(0) == 1 {
		recovery = 27
	}
	return FromValues(common.BigToHash(r), common.BigToHash(s), recovery), nil
}

// Sign signs digest with key.
func Sign(digest common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign digest: %w", err)
	}
	return FromBytes(raw)
}

// R returns the r component.
func (sig Signature) R() common.Hash { return sig.r }

// S returns the s component.
func (sig Signature) S() common.Hash { return sig.s }

// V returns the recovery value, 27 or 28.
func (sig Signature) V() byte { return sig.v }

// YParity returns 0 or 1.
func (sig Signature) YParity() byte { return sig.v - 27 }

// IsZero reports whether sig is the zero value.
func (sig Signature) IsZero() bool {
	return sig == Signature{}
}

// Bytes returns the 65-byte r‖s‖v serialization.
func (sig Signature) Bytes() []byte {
	return byteutil.Concat(sig.r[:], sig.s[:], []byte{sig.v})
}

// Compact returns the 64-byte EIP-2098 serialization, with the y parity
// folded into the top bit of s.
func (sig Signature) Compact() []byte {
	out := byteutil.Concat(sig.r[:], sig.s[:])
	if sig.YParity() == 1 {
		out[32] |= 0x80
	}
	return out
}

// String returns r ++ s[2:] ++ hex(v)[2:], the concatenation of the padded
// 32-byte r and s words and the v byte. It equals the hex of Bytes.
func (sig Signature) String() string {
	return hexutil.Encode(sig.Bytes())
}

// Recover returns the address that produced sig over digest.
func (sig Signature) Recover(digest common.Hash) (common.Address, error) {
	raw := sig.Bytes()
	raw[64] = sig.YParity()
	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

type jsonSignature struct {
	R       common.Hash     `json:"r"`
	S       common.Hash     `json:"s"`
	V       *hexutil.Uint64 `json:"v,omitempty"`
	YParity *hexutil.Uint64 `json:"yParity,omitempty"`
}

// MarshalJSON encodes sig as {r, s, v, yParity}.
func (sig Signature) MarshalJSON() ([]byte, error) {
	v := hexutil.Uint64(sig.v)
	yParity := hexutil.Uint64(sig.YParity())
	return json.Marshal(jsonSignature{R: sig.r, S: sig.s, V: &v, YParity: &yParity})
}

// UnmarshalJSON accepts either the object form or a hex string.
func (sig *Signature) UnmarshalJSON(input []byte) error {
	input = bytes.TrimSpace(input)
	if len(input) > 0 && input[0] == '"' {
		var s string
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
		parsed, err := FromHex(s)
		if err != nil {
			return err
		}
		*sig = parsed
		return nil
	}

	var dec jsonSignature
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	switch {
	case dec.V != nil:
		*sig = FromValues(dec.R, dec.S, uint64(*dec.V))
	case dec.YParity != nil:
		*sig = FromValues(dec.R, dec.S, uint64(*dec.YParity))
	default:
		return errors.New("signature: missing v or yParity")
	}
	return nil
}
