// Package gbwt implements the in-memory core of a Graph BWT: a
// compressed, searchable index over paths through a bidirected sequence
// graph. A path is a sequence of oriented nodes; the index supports
// locate/extract/backward-search operations analogous to an FM-index
// over strings, except that each node has its own local alphabet formed
// by its outgoing edges.
//
// The package is organized around three views of a node's BWT column:
//
//   - DynamicRecord is the mutable form used while building or merging
//     an index.
//   - CompressedRecord is an immutable, byte-packed view over a range
//     of a RecordArray's data blob, used for queries.
//   - DecompressedRecord expands a record into an explicit sequence of
//     edges for sequential scans.
//
// RecordArray concatenates compressed records with a sparse offset
// index; DASamples maps sampled (node, offset) positions to sequence
// identifiers; Dictionary interns sample/contig/path names; Metadata
// composes the above during multi-source merges.
//
// This package covers only the record machinery and its succinct
// supporting structures. Command-line drivers, file transport,
// benchmarking, graph construction, and thread-pool scheduling are
// external concerns layered on top of it.
package gbwt
