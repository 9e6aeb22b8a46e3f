// Package fileops provides the I/O pipeline steps: reading and writing
// CSV and Excel files, publishing stages to object storage, and
// importing database tables into stages.
package fileops
