package storageutils

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/storage/fs"
	"github.com/papercomputeco/notechat/pkg/storage/inmemory"
	"github.com/papercomputeco/notechat/pkg/storage/sqlite"
)

const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	defaultSQLiteFile = "notechat.db"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverFS, DriverSQLite, DriverMemory}

type NewDriverOpts struct {
	// DriverType selects the backend. Empty selects DriverFS.
	DriverType string

	// Dir is the root directory of the fs driver.
	Dir string

	// SQLitePath is the database file. Empty selects notechat.db in Dir.
	SQLitePath string

	Logger *slog.Logger
}

func NewDriver(o *NewDriverOpts) (storage.Driver, error) {
	driverType := o.DriverType
	if driverType == "" {
		driverType = DriverFS
	}

	if o.Logger != nil {
		o.Logger.Debug("opening storage", "driver", driverType, "dir", o.Dir)
	}

	switch driverType {
	case DriverFS:
		return fs.NewDriver(o.Dir)
	case DriverSQLite:
		path := o.SQLitePath
		if path == "" {
			if o.Dir == "" {
				return nil, fmt.Errorf("sqlite storage requires a path or directory")
			}
			path = filepath.Join(o.Dir, defaultSQLiteFile)
		}
		return sqlite.NewSQLiteDriver(path)
	case DriverMemory:
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driverType)
	}
}
