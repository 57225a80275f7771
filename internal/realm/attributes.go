package realm

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/runas/internal/filex"
)

// Drift is one attribute of a file that differs between a snapshot and now.
type Drift struct {
	Path   string
	Field  string
	Before string
	After  string
}

func (d Drift) String() string {
	switch d.Field {
	case "permissions":
		return fmt.Sprintf("WARNING: The file permissions of [%s] have changed from [%s] to [%s]", d.Path, d.Before, d.After)
	case "owner":
		return fmt.Sprintf("WARNING: Owner of file [%s] used to be [%s], but now is [%s]", d.Path, d.Before, d.After)
	case "group":
		return fmt.Sprintf("WARNING: Group of file [%s] used to be [%s], but now is [%s]", d.Path, d.Before, d.After)
	default:
		return fmt.Sprintf("WARNING: %s of file [%s] changed from [%s] to [%s]", d.Field, d.Path, d.Before, d.After)
	}
}

// Snapshot holds file attributes captured at one point in time.
type Snapshot struct {
	paths []string
	attrs map[string]filex.Attrs
}

// TakeSnapshot records the attributes of paths. Files that cannot be read
// or do not exist are not compared later.
func TakeSnapshot(paths ...string) *Snapshot {
	s := &Snapshot{attrs: make(map[string]filex.Attrs, len(paths))}
	for _, p := range paths {
		a, err := filex.Stat(p)
		if err != nil || !a.Exists {
			continue
		}
		s.paths = append(s.paths, p)
		s.attrs[p] = a
	}
	return s
}

// Check compares the snapshot with the files as they are now and writes one
// warning line per drift to w (w may be nil). Drift is informational only.
func (s *Snapshot) Check(w io.Writer) []Drift {
	var drifts []Drift
	for _, p := range s.paths {
		before := s.attrs[p]
		after, err := filex.Stat(p)
		if err != nil || !after.Exists {
			continue
		}
		if before.Mode != after.Mode {
			drifts = append(drifts, Drift{Path: p, Field: "permissions", Before: before.Mode.String(), After: after.Mode.String()})
		}
		if before.HasOwner && after.HasOwner {
			if before.UID != after.UID {
				drifts = append(drifts, Drift{Path: p, Field: "owner", Before: fmt.Sprint(before.UID), After: fmt.Sprint(after.UID)})
			}
			if before.GID != after.GID {
				drifts = append(drifts, Drift{Path: p, Field: "group", Before: fmt.Sprint(before.GID), After: fmt.Sprint(after.GID)})
			}
		}
	}
	if w != nil {
		for _, d := range drifts {
			fmt.Fprintln(w, d.String())
		}
	}
	return drifts
}
