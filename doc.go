// Package mmdbkit reads and writes MaxMind DB (MMDB) files.
//
// # Overview
//
// MMDB is a compact, read-optimized binary format that maps IP prefixes
// (IPv4 and IPv6) to structured records. A file is a binary search tree of
// fixed-width records followed by a data section of self-describing,
// type-tagged values, followed by a small metadata map.
//
// The package is built around two codecs sharing one binary grammar:
//
//   - a value codec (Decoder/Encoder) that (de)serializes the typed
//     scalar/string/map/array grammar used by both the metadata section
//     and every leaf record, including its back-reference pointer scheme;
//   - a search-tree codec (Reader/Writer) that lays out the 24/28/32-bit
//     node records referencing sibling nodes, a null sentinel, or leaf
//     offsets into the data section.
//
// Construction of the in-memory Node/Leaf tree from CIDR inputs, CLI
// drivers, and business logging are left to callers; this package is the
// on-disk format layer only.
package mmdbkit
