// Package diff exposes dataset reconciliation to recipes (the diff_data
// step) and to the HTTP API (POST /diff).
package diff
