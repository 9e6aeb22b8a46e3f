// Package transform provides the row and column transformation pipeline
// steps: filtering, sorting, column selection and renaming, cell
// cleaning, column splitting, and stage lookups.
package transform
