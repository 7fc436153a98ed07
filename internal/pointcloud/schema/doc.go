// Package schema owns the record layout model for binary point-cloud nodes.
//
// Responsibilities: scalar storage types, the closed set of attribute names,
// the process-wide descriptor catalog, ordered record schemas, and the
// format version used to pick between position encodings.
// Key types: AttributeType, AttributeName, Descriptor, Schema, Version.
//
// Dependency rule: schema depends on nothing else in internal/pointcloud.
// Everything here is a value type or immutable after construction.
package schema
