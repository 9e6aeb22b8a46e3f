// Package utils provides common utility functions for the sheetflow
// application. It includes cell value coercion helpers shared by the
// dataset model, transform steps, and file readers.
package utils
