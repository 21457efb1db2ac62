package mmdbkit

import "bytes"

// metadataMagic is the 14-byte sequence that marks the start of the
// metadata section. A file may contain this sequence incidentally inside
// its data section, so readers must locate the last occurrence, not the
// first.
var metadataMagic = []byte{0xAB, 0xCD, 0xEF, 'M', 'a', 'x', 'M', 'i', 'n', 'd', '.', 'c', 'o', 'm'}

// dataSectionGap is the run of 16 zero bytes separating the node records
// from the data section.
const dataSectionGap = 16

// Read opens the file at path and parses it into a fully materialized
// Database. The underlying file is mapped (or, where mapping isn't
// available, read in full) only for the duration of the parse: once Read
// returns, the Database holds its own decoded values and the caller may
// discard it from memory management concerns entirely.
func Read(path string) (*Database, error) {
	buf, release, err := mapFile(path)
	if err != nil {
		return nil, wrapError(KindIO, err, "opening %s", path)
	}
	defer release()

	return FromBytes(buf)
}

// FromBytes parses an already-loaded MMDB image. It is the in-memory
// counterpart to Read, useful for databases embedded in another binary
// or fetched over the network.
func FromBytes(buf []byte) (*Database, error) {
	magicAt := bytes.LastIndex(buf, metadataMagic)
	if magicAt < 0 {
		return nil, newError(KindFormat, "metadata marker not found")
	}
	metadataStart := uint64(magicAt + len(metadataMagic))

	metaDecoder := NewDecoder(buf, metadataStart)
	metaValue, _, err := metaDecoder.Decode(metadataStart)
	if err != nil {
		return nil, wrapError(KindFormat, err, "decoding metadata")
	}

	meta, err := valueToMetadata(metaValue)
	if err != nil {
		return nil, err
	}

	switch meta.RecordSize {
	case 24, 28, 32:
	default:
		return nil, newError(KindFormat, "unsupported record size %d in metadata", meta.RecordSize)
	}

	width := recordWidthBytes(meta.RecordSize)
	treeBytes := uint64(width) * uint64(meta.NodeCount)
	dataOffset := treeBytes + dataSectionGap
	if dataOffset > uint64(len(buf)) {
		return nil, newError(KindFormat, "node records (%d bytes) overrun file of length %d", dataOffset, len(buf))
	}

	t := &treeReader{
		buf:        buf,
		nodeCount:  meta.NodeCount,
		recordSize: meta.RecordSize,
		dataOffset: dataOffset,
		decoder:    NewDecoder(buf, dataOffset),
		nodeCache:  make(map[uint64]*Node),
		leafCache:  make(map[uint64]*Leaf),
	}

	root, err := t.readNode(0)
	if err != nil {
		return nil, wrapError(KindFormat, err, "reading search tree")
	}

	return &Database{Root: root, Metadata: *meta}, nil
}

// treeReader holds the state needed to materialize the search tree out
// of the node-records region of buf: a node cache and a leaf cache so
// that a value or subtree referenced from more than one place in the
// tree (the "diamond" shape §4.E calls out) is built once and shared,
// exactly as it is shared on disk.
type treeReader struct {
	buf        []byte
	nodeCount  uint32
	recordSize uint16
	dataOffset uint64
	decoder    *Decoder
	nodeCache  map[uint64]*Node
	leafCache  map[uint64]*Leaf
}

func (t *treeReader) readNode(idx uint64) (*Node, error) {
	if n, ok := t.nodeCache[idx]; ok {
		return n, nil
	}

	left, right, err := readRecord(t.buf, t.recordSize, idx)
	if err != nil {
		return nil, err
	}

	leftChild, err := t.resolveChild(left)
	if err != nil {
		return nil, err
	}
	rightChild, err := t.resolveChild(right)
	if err != nil {
		return nil, err
	}

	node := &Node{Left: leftChild, Right: rightChild}
	t.nodeCache[idx] = node
	return node, nil
}

func (t *treeReader) resolveChild(idx uint64) (Child, error) {
	switch {
	case idx < uint64(t.nodeCount):
		return t.readNode(idx)
	case idx == uint64(t.nodeCount):
		return nil, nil
	default:
		return t.readLeaf(idx)
	}
}

func (t *treeReader) readLeaf(idx uint64) (*Leaf, error) {
	leafOffset := idx - uint64(t.nodeCount) - dataSectionGap
	offset := t.dataOffset + leafOffset

	if leaf, ok := t.leafCache[offset]; ok {
		return leaf, nil
	}
	if offset > uint64(len(t.buf)) {
		return nil, newError(KindFormat, "leaf index %d resolves past end of file", idx)
	}

	value, _, err := t.decoder.Decode(offset)
	if err != nil {
		return nil, wrapError(KindFormat, err, "decoding leaf at data offset %d", leafOffset)
	}

	leaf := &Leaf{Value: value, dataOffset: leafOffset, hasOffset: true}
	t.leafCache[offset] = leaf
	return leaf, nil
}
