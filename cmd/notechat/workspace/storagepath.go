package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/notechat/pkg/config"
	storageutils "github.com/papercomputeco/notechat/pkg/storage/utils"
)

// SQLiteEnvVar overrides storage.sqlite_path.
const SQLiteEnvVar = "NOTECHAT_SQLITE"

// DriverOpts maps the storage section onto driver options. Relative
// directories and database paths are taken relative to dir.
func DriverOpts(dir string, cfg config.StorageConfig) *storageutils.NewDriverOpts {
	opts := &storageutils.NewDriverOpts{
		DriverType: cfg.Driver,
		Dir:        resolve(dir, cfg.Dir),
	}

	if opts.DriverType == storageutils.DriverSQLite {
		opts.SQLitePath = ResolveSQLitePath(dir, cfg.SQLitePath)
	}

	return opts
}

// ResolveSQLitePath picks the database file: the configured path, then
// NOTECHAT_SQLITE, then notechat.db in dir.
func ResolveSQLitePath(dir, configured string) string {
	if configured != "" {
		return resolve(dir, configured)
	}

	if envPath := strings.TrimSpace(os.Getenv(SQLiteEnvVar)); envPath != "" {
		return envPath
	}

	return filepath.Join(dir, "notechat.db")
}

func resolve(dir, path string) string {
	switch {
	case path == "":
		return dir
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(dir, path)
	}
}
