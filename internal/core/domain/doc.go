// Package domain defines the core business entities for Askdoc.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document and its status lifecycle
//   - Chunk: The retrievable unit of document text
//   - Intent: The classified task category of a query
//   - Citation: A pointer from an answer back to a source chunk
//   - QueryState: The mutable record threaded through the query pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
