// Package storage provides an abstraction layer for object storage
// services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations publish steps need: checking bucket existence, creating a
// bucket, uploading a rendered dataset, and fetching one back. The
// abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making
// it easy to mock storage interactions for unit testing (see
// core/storage/mocks).
package storage
