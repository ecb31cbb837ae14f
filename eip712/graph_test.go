package eip712

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailTypes() Types {
	return Types{
		"Person": {
			{Name: "name", Type: "string"},
			{Name: "wallet", Type: "address"},
		},
		"Mail": {
			{Name: "from", Type: "Person"},
			{Name: "to", Type: "Person"},
			{Name: "contents", Type: "string"},
		},
	}
}

func TestNewEncoderMail(t *testing.T) {
	enc, err := NewEncoder(mailTypes())
	require.NoError(t, err)

	assert.Equal(t, "Mail", enc.PrimaryType())

	encoded, err := enc.EncodeType("Mail")
	require.NoError(t, err)
	assert.Equal(t, "Mail(Person from,Person to,string contents)Person(string name,address wallet)", encoded)

	typeHash, err := enc.TypeHash("Mail")
	require.NoError(t, err)
	assert.Equal(t, "0xa0cedeb2dc280ba39b857546d74f5549c3a1d7bdc2dd96bf881f76108e23dac2", typeHash.Hex())

	person, err := enc.EncodeType("Person")
	require.NoError(t, err)
	assert.Equal(t, "Person(string name,address wallet)", person)

	_, err = enc.EncodeType("Missing")
	var unknown *UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestNewEncoderRegistersEveryStruct(t *testing.T) {
	enc, err := NewEncoder(mailTypes())
	require.NoError(t, err)

	structHash, err := enc.Hash(mailMessage())
	require.NoError(t, err)
	assert.Equal(t, "0xc52c0ee5d84264471806290a3f2c4cecfc5490626bf912d01f240d7a274b371e", structHash.Hex())

	person, err := enc.EncodeData("Person", mailMessage()["to"])
	require.NoError(t, err)
	assert.Len(t, person, 96)

	solo, err := NewEncoder(Types{"Solo": {{Name: "a", Type: "uint8"}}})
	require.NoError(t, err)

	encoded, err := solo.Encode(map[string]any{"a": 7})
	require.NoError(t, err)
	require.Len(t, encoded, 64)
	assert.Equal(t, byte(7), encoded[63])

	visited, err := solo.VisitType("Solo", map[string]any{"a": 7}, func(_ string, v any) (any, error) {
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 7}, visited)
}

func TestNewEncoderNormalizesIntAliases(t *testing.T) {
	enc, err := NewEncoder(Types{
		"Order": {
			{Name: "amount", Type: "uint"},
			{Name: "delta", Type: "int"},
			{Name: "history", Type: "uint[]"},
		},
	})
	require.NoError(t, err)

	encoded, err := enc.EncodeType("Order")
	require.NoError(t, err)
	assert.Equal(t, "Order(uint256 amount,int256 delta,uint256[] history)", encoded)
	assert.Equal(t, "uint256", enc.Types()["Order"][0].Type)
}

func TestNewEncoderKeepsStructNamedInt(t *testing.T) {
	enc, err := NewEncoder(Types{
		"Wrapper": {{Name: "value", Type: "int"}},
		"int":     {{Name: "raw", Type: "uint8"}},
	})
	require.NoError(t, err)

	encoded, err := enc.EncodeType("Wrapper")
	require.NoError(t, err)
	assert.Equal(t, "Wrapper(int value)int(uint8 raw)", encoded)
}

func TestNewEncoderSortsDependencies(t *testing.T) {
	enc, err := NewEncoder(Types{
		"Root":  {{Name: "z", Type: "Zeta"}, {Name: "a", Type: "Alpha[]"}},
		"Zeta":  {{Name: "m", Type: "Mid"}},
		"Mid":   {{Name: "x", Type: "uint8"}},
		"Alpha": {{Name: "m", Type: "Mid"}},
	})
	require.NoError(t, err)

	encoded, err := enc.EncodeType("Root")
	require.NoError(t, err)
	assert.Equal(t, "Root(Zeta z,Alpha[] a)Alpha(Mid m)Mid(uint8 x)Zeta(Mid m)", encoded)
}

func TestNewEncoderErrors(t *testing.T) {
	tests := []struct {
		name  string
		types Types
		check func(t *testing.T, err error)
	}{
		{
			name:  "no structs",
			types: Types{},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMissingPrimaryType) },
		},
		{
			name: "two roots",
			types: Types{
				"A": {{Name: "x", Type: "uint8"}},
				"B": {{Name: "y", Type: "uint8"}},
			},
			check: func(t *testing.T, err error) {
				var ambiguous *AmbiguousPrimaryTypeError
				require.ErrorAs(t, err, &ambiguous)
				assert.Equal(t, []string{"A", "B"}, ambiguous.Candidates)
			},
		},
		{
			name:  "self reference",
			types: Types{"Node": {{Name: "next", Type: "Node"}}},
			check: func(t *testing.T, err error) {
				var self *SelfReferenceError
				require.ErrorAs(t, err, &self)
				assert.Equal(t, "Node", self.Struct)
			},
		},
		{
			name:  "self reference through array",
			types: Types{"Node": {{Name: "children", Type: "Node[]"}}},
			check: func(t *testing.T, err error) {
				var self *SelfReferenceError
				assert.ErrorAs(t, err, &self)
			},
		},
		{
			name: "cycle through intermediate",
			types: Types{
				"Root": {{Name: "a", Type: "A"}},
				"A":    {{Name: "b", Type: "B"}},
				"B":    {{Name: "a", Type: "A"}},
			},
			check: func(t *testing.T, err error) {
				var cycle *CycleError
				require.ErrorAs(t, err, &cycle)
				assert.Equal(t, cycle.Path[0], cycle.Path[len(cycle.Path)-1])
			},
		},
		{
			name: "cycle with no root",
			types: Types{
				"A": {{Name: "b", Type: "B"}},
				"B": {{Name: "a", Type: "A"}},
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMissingPrimaryType) },
		},
		{
			name: "unknown struct",
			types: Types{
				"Mail": {{Name: "from", Type: "Person"}},
			},
			check: func(t *testing.T, err error) {
				var unknown *UnknownTypeError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "Person", unknown.Type)
			},
		},
		{
			name: "duplicate field",
			types: Types{
				"Mail": {{Name: "a", Type: "uint8"}, {Name: "a", Type: "string"}},
			},
			check: func(t *testing.T, err error) {
				var dup *DuplicateFieldError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "a", dup.Field)
			},
		},
		{
			name:  "invalid integer width",
			types: Types{"A": {{Name: "x", Type: "uint7"}}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidTypeError
				assert.ErrorAs(t, err, &invalid)
			},
		},
		{
			name:  "oversized integer",
			types: Types{"A": {{Name: "x", Type: "int264"}}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidTypeError
				assert.ErrorAs(t, err, &invalid)
			},
		},
		{
			name:  "oversized bytes",
			types: Types{"A": {{Name: "x", Type: "bytes33"}}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidTypeError
				assert.ErrorAs(t, err, &invalid)
			},
		},
		{
			name:  "malformed array suffix",
			types: Types{"A": {{Name: "x", Type: "uint8[a]"}}},
			check: func(t *testing.T, err error) {
				var invalid *InvalidTypeError
				assert.ErrorAs(t, err, &invalid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(tt.types)
			assert.Nil(t, enc)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewEncoderDoesNotMutateInput(t *testing.T) {
	types := Types{"A": {{Name: "x", Type: "uint"}}}
	_, err := NewEncoder(types)
	require.NoError(t, err)
	assert.Equal(t, "uint", types["A"][0].Type)
}
