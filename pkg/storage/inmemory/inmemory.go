// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/notechat/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex guarding scratch and snapshots
	mu sync.RWMutex

	scratch string

	// snapshots maps a snapshot name to its content
	snapshots map[string]string
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		snapshots: make(map[string]string),
	}
}

func (d *Driver) ReadScratch(_ context.Context) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scratch, nil
}

func (d *Driver) WriteScratch(_ context.Context, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scratch = content
	return nil
}

// PutSnapshot stores a snapshot. Existing names are never overwritten.
func (d *Driver) PutSnapshot(_ context.Context, name, content string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.snapshots[name]; ok {
		return storage.ExistsError{Name: name}
	}
	d.snapshots[name] = content
	return nil
}

func (d *Driver) GetSnapshot(_ context.Context, name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	content, ok := d.snapshots[name]
	if !ok {
		return "", storage.NotFoundError{Name: name}
	}
	return content, nil
}

func (d *Driver) ListSnapshots(ctx context.Context) ([]storage.SnapshotInfo, error) {
	return d.Search(ctx, "")
}

func (d *Driver) Search(_ context.Context, query string) ([]storage.SnapshotInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	infos := make([]storage.SnapshotInfo, 0, len(d.snapshots))
	for name, content := range d.snapshots {
		if storage.Matches(content, query) {
			infos = append(infos, storage.NewSnapshotInfo(name, content))
		}
	}
	storage.SortNewestFirst(infos)
	return infos, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
