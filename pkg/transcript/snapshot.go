package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// Extension is the file extension of transcript files.
	Extension = ".md"

	isoLayout = "2006-01-02T15:04:05.000Z"
)

var snapshotNameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2})-(\d{2})-(\d{2})-(\d{3})Z\.md$`)

// SnapshotName returns the history file name for a snapshot created at t:
// the ISO-8601 UTC instant with ':' and '.' replaced by '-', for example
// "2026-10-17T14-03-22-123Z.md".
func SnapshotName(t time.Time) string {
	iso := t.UTC().Format(isoLayout)
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso) + Extension
}

// ParseSnapshotName recovers the creation instant from a snapshot name.
func ParseSnapshotName(name string) (time.Time, error) {
	m := snapshotNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a snapshot name: %q", name)
	}
	return time.Parse(isoLayout, fmt.Sprintf("%sT%s:%s:%s.%sZ", m[1], m[2], m[3], m[4], m[5]))
}
