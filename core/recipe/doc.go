// Package recipe defines the recipe file format: a settings block
// (description, variables, stage declarations, error policy) and an
// ordered list of typed steps, plus {variable} substitution for paths and
// other configurable strings.
package recipe
