// Package backup snapshots a vault's notes before a format migration runs
// over them. Snapshots live inside the vault under a hidden directory so
// the reconciliation pass never sees them.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir is the snapshot directory name inside the vault root.
const Dir = ".backup"

const dateLayout = "2006_01_02"

// Create copies every .md file under root into
// <root>/.backup/v<version>_<YYYY_MM_DD>/, preserving relative paths.
// Creating the same snapshot twice on one day overwrites it in place.
// Returns the snapshot directory path.
func Create(root string, version int, now time.Time) (string, error) {
	name := fmt.Sprintf("v%d_%s", version, now.Format(dateLayout))
	dest := filepath.Join(root, Dir, name)

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return copyFile(p, filepath.Join(dest, rel))
	})
	if err != nil {
		return "", fmt.Errorf("backup: snapshot %s: %w", name, err)
	}
	return dest, nil
}

// Prune removes snapshot directories older than maxAge, judged by the date
// embedded in the directory name. Directories that do not look like
// snapshots are left alone. Returns the number of snapshots removed.
func Prune(root string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(filepath.Join(root, Dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("backup: read snapshot dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		taken, ok := snapshotDate(e.Name())
		if !ok {
			continue
		}
		if now.Sub(taken) <= maxAge {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, Dir, e.Name())); err != nil {
			return removed, fmt.Errorf("backup: prune %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// snapshotDate parses the date out of a v<N>_<YYYY_MM_DD> directory name.
func snapshotDate(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, "v") {
		return time.Time{}, false
	}
	_, datePart, found := strings.Cut(name, "_")
	if !found {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
