package mmdbkit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// roundTrip encodes v through a fresh cache-disabled Encoder and decodes it
// back, returning the decoded Value. Used for the grammar's basic
// encode/decode law (excluding pointers and the reserved tags, which are
// covered by dedicated tests).
func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	enc := NewEncoder(false)
	b, err := enc.Encode(v)
	require.NoError(t, err)

	dec := NewDecoder(b, 0)
	got, next, err := dec.Decode(0)
	require.NoError(t, err)
	require.EqualValues(t, len(b), next)
	return got
}

func TestValueRoundTrip(t *testing.T) {
	cases := []Value{
		String(""),
		String("hello, world"),
		Bytes{0x01, 0x02, 0xff},
		Bool(true),
		Bool(false),
		Double(3.14159),
		Float32(2.5),
		Uint16(0),
		Uint16(65535),
		Uint32(42),
		Uint32(1 << 31),
		Uint64(0),
		Uint64(1 << 63),
		NewUint128(1234567890),
		Map{{Key: String("x"), Value: Uint32(42)}},
		Array{Uint16(1), Uint16(2), Uint16(3)},
	}

	for _, c := range cases {
		got := roundTrip(t, c)
		require.Equal(t, c, got)
	}
}

func TestEmptyBytesRoundTrip(t *testing.T) {
	// Decoding a zero-length payload yields an empty (possibly nil) slice;
	// what matters is the length, not the nil-ness of the backing array.
	got := roundTrip(t, Bytes{})
	b, ok := got.(Bytes)
	require.True(t, ok)
	require.Empty(t, b)
}

func TestValueRoundTripUint128Large(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 127)
	v := Uint128{Int: n}
	got := roundTrip(t, v)

	gotU, ok := got.(Uint128)
	require.True(t, ok)
	require.Equal(t, 0, n.Cmp(gotU.Int))
}

func TestValueRoundTripNestedContainers(t *testing.T) {
	v := Map{
		{Key: String("names"), Value: Array{String("en"), String("fr")}},
		{Key: String("nested"), Value: Map{
			{Key: String("inner"), Value: Bool(true)},
		}},
	}
	got := roundTrip(t, v)
	require.Equal(t, v, got)
}

func TestZeroLengthUnsignedDecodesToZero(t *testing.T) {
	header, err := encodeHeader(tagUint32, 0)
	require.NoError(t, err)

	dec := NewDecoder(header, 0)
	v, next, err := dec.Decode(0)
	require.NoError(t, err)
	require.EqualValues(t, len(header), next)
	require.Equal(t, Uint32(0), v)
}

func TestDecodeRejectsInt32(t *testing.T) {
	header, err := encodeHeader(tagInt32, 2)
	require.NoError(t, err)
	header = append(header, 0x00, 0x01)

	dec := NewDecoder(header, 0)
	_, _, err = dec.Decode(0)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindFormat, e.Kind)
}

func TestEncodeRejectsInt32(t *testing.T) {
	enc := NewEncoder(false)
	_, err := enc.Encode(Int32(7))
	require.Error(t, err)
}

func TestDecodeRejectsReservedTags(t *testing.T) {
	for _, tag := range []int{tagDataCacheContainer, tagEndMarker} {
		header, err := encodeHeader(tag, 0)
		require.NoError(t, err)

		dec := NewDecoder(header, 0)
		_, _, err = dec.Decode(0)
		require.Error(t, err)
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	header, err := encodeHeader(tagUTF8, 2)
	require.NoError(t, err)
	buf := append(header, 0xff, 0xfe)

	dec := NewDecoder(buf, 0)
	_, _, err = dec.Decode(0)
	require.Error(t, err)
}

func TestDecodeTruncatedBufferReturnsFormatError(t *testing.T) {
	dec := NewDecoder([]byte{byte(tagMap << 5)}, 0)
	_, _, err := dec.Decode(5)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindFormat, e.Kind)
}

func TestDecodeMapClaimingMoreEntriesThanBufferFailsCleanly(t *testing.T) {
	// A map header claiming far more entries than the buffer can possibly
	// hold must be reported as an error, not panic the caller - whether
	// caught by an explicit bounds check or by Decode's recover wrapper.
	header, err := encodeHeader(tagMap, 5)
	require.NoError(t, err)

	dec := NewDecoder(header, 0)
	_, _, err = dec.Decode(0)
	require.Error(t, err)
}

func TestLengthBoundaries(t *testing.T) {
	lengths := []int{29, 285, 65821}
	extraBytes := []int{1, 2, 3}

	for i, length := range lengths {
		s := make([]byte, length)
		for j := range s {
			s[j] = byte('a' + j%26)
		}

		enc := NewEncoder(false)
		encoded, err := enc.Encode(String(s))
		require.NoError(t, err)

		// header is 1 control byte + extraBytes[i] length-extension bytes
		require.Equal(t, 1+extraBytes[i]+length, len(encoded))

		dec := NewDecoder(encoded, 0)
		got, _, err := dec.Decode(0)
		require.NoError(t, err)
		require.Equal(t, String(s), got)
	}
}

func TestEncodeHeaderChoosesMinimalLength(t *testing.T) {
	header, err := encodeHeader(tagBytes, 285)
	require.NoError(t, err)
	// 1 control byte + 2 extension bytes, never the 3-byte tier.
	require.Len(t, header, 3)
}

func TestUnsignedCapEnforced(t *testing.T) {
	_, err := encodeUnsigned(tagUint16, 1<<24, 2)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindCapacity, e.Kind)
}
