package mmdbkit

import (
	"encoding/binary"
	"math"
)

// recordWidthBytes returns the number of bytes a single node record (one
// left index plus one right index) occupies for the given record size.
func recordWidthBytes(recordSize uint16) int {
	return int(recordSize) * 2 / 8
}

// readRecord decodes the (left, right) child indices of node index from a
// node-records buffer, per §4.E's three bit layouts.
func readRecord(buf []byte, recordSize uint16, index uint64) (left, right uint64, err error) {
	switch recordSize {
	case 24:
		offset := index * 6
		if offset+6 > uint64(len(buf)) {
			return 0, 0, newError(KindFormat, "24-bit node record %d out of bounds", index)
		}
		b := buf[offset : offset+6]
		left = uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2])
		right = uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
		return left, right, nil

	case 28:
		offset := index * 7
		if offset+7 > uint64(len(buf)) {
			return 0, 0, newError(KindFormat, "28-bit node record %d out of bounds", index)
		}
		b := buf[offset : offset+7]
		left = uint64(b[3]>>4)<<24 | uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2])
		right = uint64(b[3]&0x0f)<<24 | uint64(b[4])<<16 | uint64(b[5])<<8 | uint64(b[6])
		return left, right, nil

	case 32:
		offset := index * 8
		if offset+8 > uint64(len(buf)) {
			return 0, 0, newError(KindFormat, "32-bit node record %d out of bounds", index)
		}
		b := buf[offset : offset+8]
		left = uint64(binary.BigEndian.Uint32(b[0:4]))
		right = uint64(binary.BigEndian.Uint32(b[4:8]))
		return left, right, nil

	default:
		return 0, 0, newError(KindFormat, "unsupported record size %d", recordSize)
	}
}

// writeRecord packs (left, right) into buf at the position for the given
// node index, inverting readRecord's bit layout exactly. buf must already
// be sized to hold at least (index+1)*recordWidthBytes(recordSize) bytes.
// Both indices are bounds-checked against the chosen width first: a caller
// who got chooseRecordSize wrong (or handed in an index that grew past
// what it was sized for) gets a KindCapacity error here instead of a
// silently truncated, wrapped-around record — the format gives no room to
// detect that kind of corruption on read-back.
func writeRecord(buf []byte, recordSize uint16, index uint64, left, right uint64) error {
	limit := uint64(1) << recordSize
	if left >= limit {
		return newError(KindCapacity, "left index %d does not fit in a %d-bit record", left, recordSize)
	}
	if right >= limit {
		return newError(KindCapacity, "right index %d does not fit in a %d-bit record", right, recordSize)
	}

	switch recordSize {
	case 24:
		offset := index * 6
		buf[offset] = byte(left >> 16)
		buf[offset+1] = byte(left >> 8)
		buf[offset+2] = byte(left)
		buf[offset+3] = byte(right >> 16)
		buf[offset+4] = byte(right >> 8)
		buf[offset+5] = byte(right)
		return nil

	case 28:
		offset := index * 7
		buf[offset] = byte(left >> 16)
		buf[offset+1] = byte(left >> 8)
		buf[offset+2] = byte(left)
		buf[offset+3] = byte((left>>24)&0x0f)<<4 | byte((right>>24)&0x0f)
		buf[offset+4] = byte(right >> 16)
		buf[offset+5] = byte(right >> 8)
		buf[offset+6] = byte(right)
		return nil

	case 32:
		offset := index * 8
		binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(left))
		binary.BigEndian.PutUint32(buf[offset+4:offset+8], uint32(right))
		return nil

	default:
		return newError(KindFormat, "unsupported record size %d", recordSize)
	}
}

// chooseRecordSize picks the smallest of {24, 28, 32} wide enough to hold
// every index that will appear in a node record, per §4.F step 2: the
// largest such index is nodeCount (the null sentinel) plus the 16-byte
// gap plus the final length of the data section plus one of headroom -
// a leaf index is computed as nodeCount + dataSectionGap + its offset
// within the data section (§4.F step 3), so the gap has to be counted
// here or record size gets under-selected by exactly 16.
func chooseRecordSize(nodeCount uint32, dataSectionLen int) (uint16, error) {
	maxID := uint64(nodeCount) + uint64(dataSectionGap) + uint64(dataSectionLen) + 1
	bitCount := int(math.Ceil(math.Log2(float64(maxID))))

	switch {
	case bitCount <= 24:
		return 24, nil
	case bitCount <= 28:
		return 28, nil
	case bitCount <= 32:
		return 32, nil
	default:
		return 0, newError(KindCapacity, "record size would need %d bits, exceeds maximum of 32", bitCount)
	}
}
