// Package stage implements the named dataset store that pipeline steps
// read from and write to. Stages are immutable snapshots: datasets are
// copied on save and on load, loads are usage-counted, and stages declared
// protected refuse overwrites and deletion.
//
// The store is plain in-process state behind a mutex. The reconciliation
// engine never touches it; only the orchestration layer does.
package stage
