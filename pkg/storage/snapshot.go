package storage

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/papercomputeco/notechat/pkg/transcript"
	"github.com/papercomputeco/notechat/pkg/utils"
)

const previewLen = 72

// SnapshotInfo describes a stored snapshot without its content.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
	Preview   string    `json:"preview"`
}

// NewSnapshotInfo derives the metadata of a snapshot. The creation time
// comes from the name; the preview is the first line of the first turn.
func NewSnapshotInfo(name, content string) SnapshotInfo {
	created, _ := transcript.ParseSnapshotName(name)
	return SnapshotInfo{
		Name:      name,
		CreatedAt: created,
		Size:      len(content),
		Preview:   utils.Truncate(preview(content), previewLen),
	}
}

func preview(content string) string {
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "###") {
			continue
		}
		return line
	}
	return ""
}

// SortNewestFirst orders infos by creation time, then name, descending.
func SortNewestFirst(infos []SnapshotInfo) {
	slices.SortFunc(infos, func(a, b SnapshotInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
}

// Matches reports whether content contains query, ignoring case.
// An empty query matches everything.
func Matches(content, query string) bool {
	return strings.Contains(strings.ToLower(content), strings.ToLower(query))
}

// ValidateName rejects names that are not plain transcript file names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty snapshot name")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	if filepath.Ext(name) != transcript.Extension {
		return fmt.Errorf("snapshot name %q must end in %s", name, transcript.Extension)
	}
	return nil
}
