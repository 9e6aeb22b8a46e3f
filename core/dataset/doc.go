// Package dataset defines the in-memory tabular data model shared by all
// pipeline steps: an ordered column schema, rows as column-to-value maps,
// and null-aware cell equality.
//
// Cell values are plain Go scalars (string, bool, int, int64, float64) or
// nil for a missing value. Integer and float cells holding the same number
// compare as equal so that data imported from different file formats does
// not register spurious differences.
package dataset
