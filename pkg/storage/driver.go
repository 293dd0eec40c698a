// Package storage persists transcripts: one mutable scratch transcript that
// mirrors the live conversation and any number of immutable history
// snapshots.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving transcripts in
// a storage backend. Content is the encoded transcript text; drivers never
// interpret it beyond substring search.
type Driver interface {
	// ReadScratch returns the scratch transcript, or "" if none was written.
	ReadScratch(ctx context.Context) (string, error)

	// WriteScratch replaces the scratch transcript. Writes are whole-content
	// overwrites, so the last writer wins.
	WriteScratch(ctx context.Context, content string) error

	// PutSnapshot stores a history snapshot under name. Snapshots are
	// immutable: storing an existing name fails with ExistsError.
	PutSnapshot(ctx context.Context, name, content string) error

	// GetSnapshot returns a snapshot's content, or NotFoundError.
	GetSnapshot(ctx context.Context, name string) (string, error)

	// ListSnapshots returns every snapshot, newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)

	// Search returns the snapshots whose content contains query,
	// case-insensitively, newest first.
	Search(ctx context.Context, query string) ([]SnapshotInfo, error)

	// Close closes the store and releases any resources.
	Close() error
}
