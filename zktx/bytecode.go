package zktx

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MaxBytecodeSize is the largest deployable bytecode, in bytes.
const MaxBytecodeSize = (1<<16 - 1) * 32

var (
	ErrBytecodeLength    = errors.New("zktx: bytecode length in bytes must be divisible by 32")
	ErrBytecodeTooLong   = errors.New("zktx: bytecode length must be less than 2^16 words")
	ErrBytecodeEvenWords = errors.New("zktx: bytecode length in 32-byte words must be odd")
)

// HashBytecode returns the versioned hash zkSync uses to identify deployed
// bytecode: sha256 with the first two bytes replaced by the version 0x0100
// and the next two by the length in 32-byte words.
func HashBytecode(bytecode []byte) (common.Hash, error) {
	if len(bytecode)%32 != 0 {
		return common.Hash{}, ErrBytecodeLength
	}
	if len(bytecode) > MaxBytecodeSize {
		return common.Hash{}, fmt.Errorf("%w: %d bytes", ErrBytecodeTooLong, len(bytecode))
	}
	words := len(bytecode) / 32
	if words%2 == 0 {
		return common.Hash{}, ErrBytecodeEvenWords
	}

	hash := common.Hash(sha256.Sum256(bytecode))
	hash[0] = 1
	hash[1] = 0
	binary.BigEndian.PutUint16(hash[2:4], uint16(words))
	return hash, nil
}
