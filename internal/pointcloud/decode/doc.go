// Package decode turns a node's binary record stream into typed per-attribute
// columns and computes the node's centroid and tight bounding box in the same
// pass.
//
// Responsibilities: per-attribute decode algorithms (position in both
// encodings, packed colour, intensity, classification, three normal
// encodings), the synthetic index column, and the single-pass orchestrator.
// Key types: Request, Bundle, Column, Box.
//
// Decode is synchronous, allocates every output slice itself and shares no
// mutable state, so independent requests may be decoded on separate
// goroutines without coordination. This package never logs; callers report.
package decode
