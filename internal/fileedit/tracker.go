// Package fileedit snapshots file and directory trees before and after
// traffic so edits the system under test makes to its own files can be
// recorded and, on replay, reproduced.
package fileedit

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/traffic-mim/server/internal/fileedit/editstore"
)

// entry is the (mtime, size) fingerprint of one sub-path.
type entry struct {
	modTime int64 // unix nanos; avoids importing time into equality checks
	size    int64
	isDir   bool
	isLink  bool
}

// Diff describes what changed under one top-level watched path.
type Diff struct {
	TopLevel string
	Changed  []string // sub-paths that are new or modified
	Removed  []string // sub-paths collapsed to their nearest surviving ancestor
}

// Tracker is the mutex-guarded registry of watched paths and their last
// known snapshot.
type Tracker struct {
	mu       sync.Mutex
	ignore   map[string]bool
	watched  []string // most-recent-first, deduplicated
	snapshot map[string]map[string]entry

	editNames map[string]int // logical name -> count, for .edit_<n> disambiguation
}

// NewTracker returns an empty tracker that skips the given names
// (matched by base name only, e.g. ".git", "__pycache__") during walks.
func NewTracker(ignoreNames []string) *Tracker {
	ignore := make(map[string]bool, len(ignoreNames))
	for _, n := range ignoreNames {
		ignore[n] = true
	}
	return &Tracker{
		ignore:    ignore,
		snapshot:  make(map[string]map[string]entry),
		editNames: make(map[string]int),
	}
}

// Note declares that paths are possible edit targets for the request
// about to run: it snapshots each one now (if it exists) and pushes it
// to the front of the watched list.
func (t *Tracker) Note(paths []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range paths {
		if p == "" {
			continue
		}
		t.snapshot[p] = t.walk(p)
		t.pushWatched(p)
	}
}

func (t *Tracker) pushWatched(p string) {
	out := make([]string, 0, len(t.watched)+1)
	out = append(out, p)
	for _, w := range t.watched {
		if w != p {
			out = append(out, w)
		}
	}
	t.watched = out
}

// walk returns the (mtime, size) fingerprint of every file, directory and
// symlink under
// root (root included), skipping ignored names. A non-existent root
// yields an empty map, which is what makes "file later created" detect
// as a change.
func (t *Tracker) walk(root string) map[string]entry {
	out := make(map[string]entry)
	fi, err := os.Lstat(root)
	if err != nil {
		return out
	}
	t.walkInto(root, fi, out)
	return out
}

func (t *Tracker) walkInto(path string, fi os.FileInfo, out map[string]entry) {
	if t.ignore[fi.Name()] {
		return
	}
	isLink := fi.Mode()&os.ModeSymlink != 0
	out[path] = entry{
		modTime: fi.ModTime().UnixNano(),
		size:    fi.Size(),
		isDir:   fi.IsDir() && !isLink,
		isLink:  isLink,
	}
	if !fi.IsDir() || isLink {
		return
	}
	children, err := os.ReadDir(path)
	if err != nil {
		return
	}
	for _, c := range children {
		cfi, err := c.Info()
		if err != nil {
			continue
		}
		t.walkInto(filepath.Join(path, c.Name()), cfi, out)
	}
}

// LatestEdits rewalks every watched top-level path and reports what
// changed since the last Note/LatestEdits call for it.
func (t *Tracker) LatestEdits() []Diff {
	t.mu.Lock()
	defer t.mu.Unlock()

	var diffs []Diff
	for _, top := range t.watched {
		before := t.snapshot[top]
		after := t.walk(top)

		var changed, removedRaw []string
		for p, a := range after {
			if b, ok := before[p]; !ok || b != a {
				changed = append(changed, p)
			}
		}
		for p := range before {
			if _, ok := after[p]; !ok {
				removedRaw = append(removedRaw, p)
			}
		}

		removed := conciseRemoval(removedRaw, after)

		if len(changed) > 0 || len(removed) > 0 {
			sort.Strings(changed)
			sort.Strings(removed)
			diffs = append(diffs, Diff{TopLevel: top, Changed: changed, Removed: removed})
		}
		t.snapshot[top] = after
	}
	return diffs
}

// conciseRemoval collapses a set of removed sub-paths down to the
// highest ancestor that is itself absent from the surviving set,
// so that deleting a directory of a thousand files is reported as one
// removal of the directory rather than a thousand individual removals.
func conciseRemoval(removed []string, surviving map[string]entry) []string {
	stillThere := func(p string) bool {
		_, ok := surviving[p]
		return ok
	}

	removedSet := make(map[string]bool, len(removed))
	for _, p := range removed {
		removedSet[p] = true
	}

	out := make(map[string]bool)
	for _, p := range removed {
		cur := p
		for {
			parent := filepath.Dir(cur)
			if parent == cur || parent == "." || parent == string(filepath.Separator) {
				break
			}
			if stillThere(parent) || !removedSet[parent] {
				break
			}
			cur = parent
		}
		out[cur] = true
	}

	result := make([]string, 0, len(out))
	for p := range out {
		result = append(result, p)
	}
	return result
}

// StoreEdit copies the current state of every changed/removed sub-path
// under diff.TopLevel into store, named after logicalName (disambiguated
// with .edit_<n> if logicalName has already been stored once this run),
// and returns the logical name actually used.
func (t *Tracker) StoreEdit(store editstore.Store, logicalName string, diff Diff) (string, error) {
	t.mu.Lock()
	t.editNames[logicalName]++
	n := t.editNames[logicalName]
	t.mu.Unlock()

	name := logicalName
	if n > 1 {
		name = logicalName + ".edit_" + strconv.Itoa(n)
	}

	for _, p := range diff.Changed {
		rel := storedRel(name, diff.TopLevel, p)
		if err := storeOne(store, rel, p); err != nil {
			return name, err
		}
	}
	for _, p := range diff.Removed {
		rel := storedRel(name, diff.TopLevel, p) + ".DELETION"
		if err := store.Put(rel, bytes.NewReader(nil)); err != nil {
			return name, err
		}
	}
	return name, nil
}

func storedRel(name, top, path string) string {
	suffix := strings.TrimPrefix(path, top)
	return filepath.Join(name, suffix)
}

func storeOne(store editstore.Store, rel, activePath string) error {
	fi, err := os.Lstat(activePath)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		// Relative link targets are stored as-is; they are already
		// relative to the link's own directory on both sides.
		target, err := os.Readlink(activePath)
		if err != nil {
			return err
		}
		return store.Put(rel+".SYMLINK", strings.NewReader(target))
	}
	if fi.IsDir() {
		return store.MkdirAll(rel)
	}
	f, err := os.Open(activePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Put(rel, f)
}

// ReproduceEdit applies a previously stored edit back onto the active
// filesystem, for replay: deletions are removed, symlinks recreated,
// and plain files copied byte for byte. A directory entry in the store
// is not recreated; reproducing one returns an error.
func ReproduceEdit(store editstore.Store, storedRel, activePath string) error {
	switch {
	case strings.HasSuffix(storedRel, ".DELETION"):
		return os.RemoveAll(activePath)
	case strings.HasSuffix(storedRel, ".SYMLINK"):
		r, err := store.Get(storedRel)
		if err != nil {
			return err
		}
		defer r.Close()
		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, r); err != nil {
			return err
		}
		os.Remove(activePath)
		return os.Symlink(buf.String(), activePath)
	default:
		if fi, err := os.Lstat(activePath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			os.Remove(activePath)
		}
		r, err := store.Get(storedRel)
		if err != nil {
			return err
		}
		defer r.Close()
		if err := os.MkdirAll(filepath.Dir(activePath), 0755); err != nil {
			return err
		}
		f, err := os.Create(activePath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(f, r)
		return err
	}
}

// Clear drops the watched list and snapshot, as happens at the end of
// any request whose edits are not asynchronous.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watched = nil
	t.snapshot = make(map[string]map[string]entry)
}

// Watched returns a copy of the current most-recent-first watched list.
func (t *Tracker) Watched() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.watched))
	copy(out, t.watched)
	return out
}
