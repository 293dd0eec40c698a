// Package fs provides a storage driver backed by plain Markdown files:
//
//	<dir>/scratch.md
//	<dir>/history/<snapshot>.md
//
// Files are written whole through a temporary file and a rename, so readers
// never observe a partial transcript.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

const (
	ScratchFile = "scratch.md"
	HistoryDir  = "history"

	dirMode  = 0o755
	fileMode = 0o644
)

// Driver implements storage.Driver on a directory.
type Driver struct {
	dir string
}

// NewDriver creates the directory layout under dir if needed.
func NewDriver(dir string) (*Driver, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, HistoryDir), dirMode); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Driver{dir: dir}, nil
}

// Dir returns the root directory.
func (d *Driver) Dir() string {
	return d.dir
}

func (d *Driver) ReadScratch(_ context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, ScratchFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading scratch transcript: %w", err)
	}
	return string(data), nil
}

func (d *Driver) WriteScratch(_ context.Context, content string) error {
	if err := writeFileAtomic(filepath.Join(d.dir, ScratchFile), content); err != nil {
		return fmt.Errorf("writing scratch transcript: %w", err)
	}
	return nil
}

func (d *Driver) PutSnapshot(_ context.Context, name, content string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	path := d.snapshotPath(name)
	if _, err := os.Stat(path); err == nil {
		return storage.ExistsError{Name: name}
	}

	if err := writeFileAtomic(path, content); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", name, err)
	}
	return nil
}

func (d *Driver) GetSnapshot(_ context.Context, name string) (string, error) {
	if err := storage.ValidateName(name); err != nil {
		return "", storage.NotFoundError{Name: name}
	}

	data, err := os.ReadFile(d.snapshotPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", storage.NotFoundError{Name: name}
	}
	if err != nil {
		return "", fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	return string(data), nil
}

func (d *Driver) ListSnapshots(ctx context.Context) ([]storage.SnapshotInfo, error) {
	return d.Search(ctx, "")
}

func (d *Driver) Search(ctx context.Context, query string) ([]storage.SnapshotInfo, error) {
	entries, err := os.ReadDir(filepath.Join(d.dir, HistoryDir))
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	infos := make([]storage.SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, transcript.Extension) || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(d.snapshotPath(name))
		if err != nil {
			return nil, fmt.Errorf("reading snapshot %s: %w", name, err)
		}
		if storage.Matches(string(data), query) {
			infos = append(infos, storage.NewSnapshotInfo(name, string(data)))
		}
	}

	storage.SortNewestFirst(infos)
	return infos, nil
}

// Close is a no-op for the file driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) snapshotPath(name string) string {
	return filepath.Join(d.dir, HistoryDir, name)
}

func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
