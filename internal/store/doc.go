// Package store persists downloaded images through a gocloud.dev blob
// bucket.
//
// The production tree uses fileblob (one directory per song under the output
// root); tests use memblob. Writes are deduplicated by comparing SHA-256
// digests of the existing and fetched bytes, so re-running the pipeline
// against unchanged remote content writes nothing.
package store
