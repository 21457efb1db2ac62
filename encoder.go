package mmdbkit

import (
	"encoding/binary"
	"math"
	"reflect"
)

// Encoder serializes Values into the data section of an MMDB file. It
// owns the accumulated byte buffer and, when dedup is enabled, the
// identity-keyed pointer cache described in §4.D: the same Map, Array, or
// Bytes value encoded twice (by Go pointer/slice identity, not by
// structural equality) is written once, with every later occurrence
// replaced by a pointer to the first.
//
// Scalar Values (String, Bool, the numeric wrappers) have no Go-level
// identity distinct from their value, so they are never deduped even
// with the cache enabled - only the three slice-backed Value kinds are.
// This is a deliberate, spec-compatible narrowing of the reference
// implementation's id()-keyed cache, which in CPython keys on every
// value's object identity; see DESIGN.md.
type Encoder struct {
	withCache bool
	data      []byte
	cache     map[uintptr]uint64
}

// NewEncoder builds an Encoder. withCache should be true for tree leaves
// and false for the metadata value, per §4.F/§6.
func NewEncoder(withCache bool) *Encoder {
	e := &Encoder{withCache: withCache}
	if withCache {
		e.cache = make(map[uintptr]uint64)
	}
	return e
}

// Data returns the bytes accumulated so far in the encoder's data
// section. Only meaningful for cache-enabled encoders - a cache-disabled
// Encoder (used for metadata) never appends to its own buffer; its
// Encode return value is the complete encoding to write out directly.
func (e *Encoder) Data() []byte { return e.data }

// Encode serializes v and returns its bytes. With the cache disabled
// (the metadata encoder), it has no side effects - the returned bytes
// are the complete encoding to write out directly. With the cache
// enabled, this is only meant for embedding v inside a larger value
// already under construction (a map or array entry): the returned bytes
// are either v's real encoding or, on a repeat identity, a pointer to
// where it was already written - the caller is responsible for placing
// them. Tree leaves should use EncodeLeaf instead, which places the
// bytes itself.
func (e *Encoder) Encode(v Value) ([]byte, error) {
	return e.encode(v, e.withCache)
}

// EncodeLeaf serializes v as a standalone entry in the data section -
// used for tree leaves, which (unlike map/array entries) have no parent
// structure to embed their bytes into. It returns the offset (relative
// to the start of the data section) at which decoding should begin to
// reach v's logical value.
//
// A value seen here for the first time is written in full and the
// returned offset is where that content begins - no extra pointer is
// appended for it, matching §8's "data section size equals header ...
// for the first leaf" scenario. A value whose identity was already
// cached (shared with an earlier leaf or an earlier nested value) gets
// only a fresh pointer appended, and the returned offset is where that
// pointer sits - matching the same scenario's "... plus pointer for the
// second leaf".
func (e *Encoder) EncodeLeaf(v Value) (uint64, error) {
	if key, ok := identityKey(v); ok {
		if offset, found := e.cache[key]; found {
			p, err := encodePointer(offset)
			if err != nil {
				return 0, err
			}
			pos := uint64(len(e.data))
			e.data = append(e.data, p...)
			return pos, nil
		}
	}

	res, err := e.encodeValue(v, e.withCache)
	if err != nil {
		return 0, err
	}

	offset := uint64(len(e.data))
	if key, ok := identityKey(v); ok {
		e.cache[key] = offset
	}
	e.data = append(e.data, res...)
	return offset, nil
}

func (e *Encoder) encode(v Value, useCache bool) ([]byte, error) {
	if useCache {
		if key, ok := identityKey(v); ok {
			if offset, found := e.cache[key]; found {
				return encodePointer(offset)
			}
		}
	}

	res, err := e.encodeValue(v, useCache)
	if err != nil {
		return nil, err
	}

	if useCache {
		if key, ok := identityKey(v); ok {
			e.cache[key] = uint64(len(e.data))
			e.data = append(e.data, res...)
			return e.encode(v, useCache)
		}
	}

	return res, nil
}

func (e *Encoder) encodeValue(v Value, useCache bool) ([]byte, error) {
	switch x := v.(type) {
	case Map:
		header, err := encodeHeader(tagMap, len(x))
		if err != nil {
			return nil, err
		}
		res := header
		for _, entry := range x {
			// Keys are always encoded by value, never as a pointer, even
			// when the value cache is enabled.
			keyBytes, err := e.encode(entry.Key, false)
			if err != nil {
				return nil, err
			}
			valBytes, err := e.encode(entry.Value, useCache)
			if err != nil {
				return nil, err
			}
			res = append(res, keyBytes...)
			res = append(res, valBytes...)
		}
		return res, nil

	case Array:
		header, err := encodeHeader(tagArray, len(x))
		if err != nil {
			return nil, err
		}
		res := header
		for _, elem := range x {
			elemBytes, err := e.encode(elem, useCache)
			if err != nil {
				return nil, err
			}
			res = append(res, elemBytes...)
		}
		return res, nil

	case String:
		encoded := []byte(x)
		header, err := encodeHeader(tagUTF8, len(encoded))
		if err != nil {
			return nil, err
		}
		return append(header, encoded...), nil

	case Bytes:
		header, err := encodeHeader(tagBytes, len(x))
		if err != nil {
			return nil, err
		}
		return append(header, x...), nil

	case Bool:
		truth := 0
		if x {
			truth = 1
		}
		return encodeHeader(tagBoolean, truth)

	case Double:
		header, err := encodeHeader(tagDouble, 8)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, 8)
		binary.BigEndian.PutUint64(payload, math.Float64bits(float64(x)))
		return append(header, payload...), nil

	case Float32:
		header, err := encodeHeader(tagFloat, 4)
		if err != nil {
			return nil, err
		}
		payload := make([]byte, 4)
		binary.BigEndian.PutUint32(payload, math.Float32bits(float32(x)))
		return append(header, payload...), nil

	case Uint16:
		return encodeUnsigned(tagUint16, uint64(x), 2)

	case Uint32:
		return encodeUnsigned(tagUint32, uint64(x), 4)

	case Uint64:
		return encodeUnsigned(tagUint64, uint64(x), 8)

	case Uint128:
		return encodeUint128(x)

	case Int32:
		return nil, newError(KindShape, "int32 serialization is unimplemented")

	default:
		return nil, newError(KindShape, "don't know how to serialize value of type %T", v)
	}
}

// encodeUnsigned strips leading zero bytes (emitting an empty payload for
// zero) and caps the result at maxLen bytes, per §4.D.
func encodeUnsigned(tag int, value uint64, maxLen int) ([]byte, error) {
	var payload []byte
	for value != 0 {
		payload = append([]byte{byte(value)}, payload...)
		value >>= 8
	}
	if len(payload) > maxLen {
		return nil, newError(KindCapacity, "value requires %d bytes, exceeds %d-byte width", len(payload), maxLen)
	}
	header, err := encodeHeader(tag, len(payload))
	if err != nil {
		return nil, err
	}
	return append(header, payload...), nil
}

func encodeUint128(v Uint128) ([]byte, error) {
	if v.Int == nil {
		return encodeHeader(tagUint128, 0)
	}
	if v.Int.Sign() < 0 {
		return nil, newError(KindShape, "uint128 value is negative")
	}
	payload := v.Int.Bytes()
	if len(payload) > 16 {
		return nil, newError(KindCapacity, "uint128 value requires %d bytes, exceeds 16-byte width", len(payload))
	}
	header, err := encodeHeader(tagUint128, len(payload))
	if err != nil {
		return nil, err
	}
	return append(header, payload...), nil
}

// identityKey returns the backing-array address of v's underlying slice
// (Map, Array, and Bytes are all slice-kinded) as a stand-in for the
// reference implementation's object identity, and false for every
// scalar Value kind and for empty slices (which have nothing to share).
func identityKey(v Value) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return 0, false
	}
	return rv.Pointer(), true
}
