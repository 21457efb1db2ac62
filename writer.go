package mmdbkit

import "os"

// Write serializes db to path in the on-disk MMDB layout described by
// §4: node records, a 16-byte zero gap, the data section, the 14-byte
// metadata marker, and the metadata map.
func (db *Database) Write(path string) error {
	buf, err := db.serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return wrapError(KindIO, err, "writing %s", path)
	}
	return nil
}

// writerState is the bookkeeping the serializer needs across its two
// passes: a sequential index for every distinct *Node (so a subtree
// reachable from more than one parent gets a single node record, not a
// copy), and the data-section offset for every distinct *Leaf's
// serialized value.
type writerState struct {
	nodeIndex map[*Node]uint64
	nodeOrder []*Node
	leafIndex map[*Leaf]uint64
	enc       *Encoder
}

func (db *Database) serialize() ([]byte, error) {
	w := &writerState{
		nodeIndex: make(map[*Node]uint64),
		leafIndex: make(map[*Leaf]uint64),
		enc:       NewEncoder(true),
	}

	if db.Root != nil {
		if err := w.enumerate(db.Root); err != nil {
			return nil, wrapError(KindShape, err, "enumerating search tree")
		}
	}

	nodeCount := uint32(len(w.nodeOrder))
	recordSize, err := chooseRecordSize(nodeCount, len(w.enc.Data()))
	if err != nil {
		return nil, err
	}

	width := recordWidthBytes(recordSize)
	buf := make([]byte, uint64(width)*uint64(nodeCount))

	for i, n := range w.nodeOrder {
		left, err := w.childIndex(n.Left, nodeCount)
		if err != nil {
			return nil, err
		}
		right, err := w.childIndex(n.Right, nodeCount)
		if err != nil {
			return nil, err
		}
		if err := writeRecord(buf, recordSize, uint64(i), left, right); err != nil {
			return nil, err
		}
	}

	buf = append(buf, make([]byte, dataSectionGap)...)
	buf = append(buf, w.enc.Data()...)
	buf = append(buf, metadataMagic...)

	meta := db.Metadata
	meta.NodeCount = nodeCount
	meta.RecordSize = recordSize

	metaEnc := NewEncoder(false)
	metaBytes, err := metaEnc.Encode(metadataToValue(meta))
	if err != nil {
		return nil, wrapError(KindShape, err, "encoding metadata")
	}
	buf = append(buf, metaBytes...)

	return buf, nil
}

// enumerate walks the tree with an explicit stack rather than recursion,
// since real-world trees (the full IPv4/IPv6 space) are wide and
// diamond-heavy enough to risk a deep call stack. Pushing Right before
// Left means Left's entire subtree - including every leaf it contains -
// is fully drained before Right is ever popped, which reproduces the
// left-before-right ordering of a recursive pre-order walk exactly.
func (w *writerState) enumerate(root *Node) error {
	stack := []Child{root}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch c := top.(type) {
		case nil:
			continue

		case *Node:
			if _, seen := w.nodeIndex[c]; seen {
				continue
			}
			w.nodeIndex[c] = uint64(len(w.nodeOrder))
			w.nodeOrder = append(w.nodeOrder, c)
			stack = append(stack, c.Right, c.Left)

		case *Leaf:
			if _, seen := w.leafIndex[c]; seen {
				continue
			}
			offset, err := w.enc.EncodeLeaf(c.Value)
			if err != nil {
				return err
			}
			w.leafIndex[c] = offset

		default:
			return newError(KindShape, "unknown child type %T in search tree", c)
		}
	}

	return nil
}

func (w *writerState) childIndex(c Child, nodeCount uint32) (uint64, error) {
	switch x := c.(type) {
	case nil:
		return uint64(nodeCount), nil
	case *Node:
		idx, ok := w.nodeIndex[x]
		if !ok {
			return 0, newError(KindShape, "node was not visited during enumeration")
		}
		return idx, nil
	case *Leaf:
		offset, ok := w.leafIndex[x]
		if !ok {
			return 0, newError(KindShape, "leaf was not visited during enumeration")
		}
		return uint64(nodeCount) + dataSectionGap + offset, nil
	default:
		return 0, newError(KindShape, "unknown child type %T in search tree", c)
	}
}
