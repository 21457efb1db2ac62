package mmdbkit

import "math/big"

// Value is the closed set of things the value codec can encode: the typed
// scalar wrappers below, plus String, Bytes, Bool, Map, and Array. Two
// Values of the same numeric magnitude but different wrapper types are not
// equal and are serialized with different type tags.
type Value interface {
	isValue()
}

// String is an inline UTF-8 string value (type tag 2).
type String string

func (String) isValue() {}

// Bytes is a raw byte string value (type tag 4).
type Bytes []byte

func (Bytes) isValue() {}

// Bool is a boolean value (type tag 14). It carries no payload; the
// control byte's length field holds the truth value directly.
type Bool bool

func (Bool) isValue() {}

// Double is a big-endian IEEE-754 64-bit float (type tag 3).
type Double float64

func (Double) isValue() {}

// Float32 is a big-endian IEEE-754 32-bit float (type tag 15).
type Float32 float32

func (Float32) isValue() {}

// Uint16 is an unsigned 16-bit integer, encoded with leading zero bytes
// stripped (type tag 5).
type Uint16 uint16

func (Uint16) isValue() {}

// Uint32 is an unsigned 32-bit integer (type tag 6).
type Uint32 uint32

func (Uint32) isValue() {}

// Uint64 is an unsigned 64-bit integer (type tag 9).
type Uint64 uint64

func (Uint64) isValue() {}

// Uint128 is an unsigned 128-bit integer (type tag 10). Go has no native
// 128-bit integer type, so the magnitude is carried in a math/big.Int, the
// usual idiom for values wider than uint64 when no fixed-width type fits.
type Uint128 struct {
	Int *big.Int
}

func (Uint128) isValue() {}

// NewUint128 builds a Uint128 from a uint64, for the common case where the
// value happens to fit in 64 bits but the caller wants the wider tag.
func NewUint128(v uint64) Uint128 {
	return Uint128{Int: new(big.Int).SetUint64(v)}
}

// Int32 is a signed 32-bit integer (type tag 8). The writer never emits
// this type - the spec the format was distilled from leaves it
// unimplemented - but the decoder still recognizes the tag so it can
// report a clear "unimplemented" error instead of an unknown-type one.
type Int32 int32

func (Int32) isValue() {}

// MapEntry is one key/value pair of a Map, in encounter order.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered sequence of key/value pairs (type tag 7). It is a
// slice rather than a Go map so that insertion order - which the wire
// format preserves - round-trips exactly.
type Map []MapEntry

func (Map) isValue() {}

// Get returns the value associated with the first entry whose key is the
// String key, and whether such an entry exists. Map keys are not required
// to be strings by the grammar, but in every MMDB file in the wild they
// are, so this is the convenience lookup callers reach for.
func (m Map) Get(key string) (Value, bool) {
	for _, entry := range m {
		if s, ok := entry.Key.(String); ok && string(s) == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Array is an ordered sequence of values (type tag 11).
type Array []Value

func (Array) isValue() {}
