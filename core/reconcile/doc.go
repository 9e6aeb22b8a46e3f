// Package reconcile compares two tabular datasets, a reference (baseline)
// snapshot and a current (subject) snapshot, and classifies every row as
// NEW, CHANGED, UNCHANGED, or DELETED.
//
// The engine is a single synchronous batch transform over plain dataset
// values. It performs no I/O, holds no state between invocations, and never
// touches the stage store; orchestration layers hand datasets in and
// persist the outputs.
//
// # Architecture
//
// 1. Indexer: builds a composite-key index per input dataset, detecting
// duplicate keys and resolving them by a configurable policy (last row
// wins by default).
//
// 2. Classifier: walks the union of keys and assigns exactly one
// classification per key. Keys present in both datasets are delegated to
// the annotator; keys only in the current dataset are NEW; keys only in
// the reference dataset are DELETED or dropped, per the deleted-row policy.
//
// 3. Annotator: compares the non-key, non-excluded columns of a matched
// row pair with null-aware equality and produces the change metadata
// columns (Row_Status, Changed_Fields, Change_Count, Change_Details, and
// optionally Change_Details_JSON).
//
// 4. Assembler: concatenates the annotated rows into one result dataset.
// Row values come from the current dataset, except DELETED rows which
// necessarily come from the reference. An empty union still yields a
// zero-row dataset with the full output schema.
//
// 5. Partitioner: plans up to four named subsets of the result, one per
// classification, for the orchestrator to save. Requested partitions are
// produced even when empty.
package reconcile
