package mmdbkit

// Child is one slot of a Node: another Node, a Leaf, or the untyped nil
// interface value standing for the null sentinel. Construction of the
// tree from CIDR inputs is a caller concern; this package only walks and
// (de)serializes whatever shape it is handed.
type Child interface {
	isChild()
}

// Node is a binary tree node with a left and right child slot. Node
// identity, not structural value, is what the Writer keys node records
// on: two structurally identical subtrees reached through distinct *Node
// values get separate records, and the same *Node value reached from two
// places shares one record. This is the only mechanism callers have to
// request sharing in the serialized tree.
type Node struct {
	Left  Child
	Right Child
}

func (*Node) isChild() {}

// Leaf carries the value stored at a prefix. A *Leaf's identity is the
// dedup key the Writer uses for its data section: the same *Leaf reached
// from multiple tree paths is serialized exactly once and every record
// referencing it gets that single data-section offset.
type Leaf struct {
	Value Value

	// dataOffset and hasOffset are populated by the Reader when this leaf
	// is materialized from a file; they record the data-section offset it
	// was decoded from. The Writer tracks leaf offsets separately in its
	// own enumeration state and leaves these fields untouched on a
	// caller-constructed tree.
	dataOffset uint64
	hasOffset  bool
}

func (*Leaf) isChild() {}

// NewLeaf wraps v in a fresh *Leaf. Callers who want two tree positions to
// share one serialized leaf must reuse the same *Leaf pointer, not call
// NewLeaf twice with equal values - dedup is identity-keyed, not
// structural, exactly as the value codec's pointer cache is.
func NewLeaf(v Value) *Leaf {
	return &Leaf{Value: v}
}

// Database is a decoded MMDB file: its search tree plus metadata. It is
// also what Write consumes to produce a file, so it is the shape both the
// Reader and Writer agree on.
type Database struct {
	Root     *Node
	Metadata Metadata
}

// Metadata is the fixed attribute set every MMDB file carries, encoded as
// a Map in the data stream right after the magic marker.
type Metadata struct {
	BuildEpoch               uint64
	DatabaseType             string
	Description              map[string]string
	IPVersion                uint16
	Languages                []string
	NodeCount                uint32
	RecordSize               uint16
	BinaryFormatMajorVersion uint16
	BinaryFormatMinorVersion uint16
}
