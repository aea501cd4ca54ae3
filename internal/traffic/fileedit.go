package traffic

import (
	"path/filepath"
	"strings"

	"github.com/traffic-mim/server/internal/fileedit"
)

// SubEdit names one sub-path changed or removed under a FileEdit's
// logical tree, relative to its top-level watched path.
type SubEdit struct {
	Suffix  string
	Removed bool
}

// FileEdit reports that a file or directory tree the SUT was watching
// changed. In recording mode it carries the raw Diff the file-edit
// tracker computed and, on ForwardToDestination, copies the changed
// state into the edit store. In replay mode it carries the sub-edits
// parsed back out of the transcript line to reproduce onto the
// resolved active path instead.
type FileEdit struct {
	LogicalName string
	ActivePath  string
	Diff        fileedit.Diff // recording mode only

	Reproduce bool
	Subs      []SubEdit // replay mode only
}

func (FileEdit) Kind() string      { return "FileEdit" }
func (FileEdit) Tag() string       { return "FIL" }
func (FileEdit) Direction() string { return DirToSUT }
func (FileEdit) HasInfo() bool     { return true }

// Description renders name, then each changed sub-path tagged "C:" and
// each removed sub-path tagged "R:", all relative to the top-level
// watched path. The tag lets replay tell a modified file from a
// deleted one without re-deriving it from the live filesystem.
func (m FileEdit) Description() string {
	name := m.LogicalName
	if name == "" {
		name = filepath.Base(m.ActivePath)
	}
	parts := []string{name}
	for _, p := range m.Diff.Changed {
		parts = append(parts, "C:"+subPathOf(m.Diff.TopLevel, p))
	}
	for _, p := range m.Diff.Removed {
		parts = append(parts, "R:"+subPathOf(m.Diff.TopLevel, p))
	}
	return line(DirToSUT, "FIL", strings.Join(parts, " "))
}

func subPathOf(top, path string) string {
	rel := strings.TrimPrefix(path, top)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	if rel == "" {
		rel = "."
	}
	return rel
}

func (m FileEdit) ForwardToDestination(ctx *Context) ([]Message, error) {
	if m.Reproduce {
		if ctx.Store == nil {
			return nil, nil
		}
		var firstErr error
		for _, s := range m.Subs {
			activeSub := filepath.Join(m.ActivePath, s.Suffix)
			storedRel := filepath.Join(m.LogicalName, s.Suffix)
			if s.Removed {
				if err := fileedit.ReproduceEdit(ctx.Store, storedRel+".DELETION", activeSub); err != nil && firstErr == nil {
					firstErr = err
				}
				continue
			}
			if ctx.Store.Exists(storedRel + ".SYMLINK") {
				storedRel += ".SYMLINK"
			}
			if err := fileedit.ReproduceEdit(ctx.Store, storedRel, activeSub); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	}

	if ctx.Store == nil {
		return nil, nil
	}
	if _, err := ctx.Edits.StoreEdit(ctx.Store, m.LogicalName, m.Diff); err != nil {
		return nil, err
	}
	return nil, nil
}

func (FileEdit) MakesAsynchronousEdits() bool { return false }
func (FileEdit) EnquiryOnly([]Message) bool   { return false }

// NewFileEdit builds a recording-mode FileEdit message for one tracker
// diff, naming it after the base name of the watched top-level path.
func NewFileEdit(d fileedit.Diff) FileEdit {
	return FileEdit{
		LogicalName: filepath.Base(d.TopLevel),
		ActivePath:  d.TopLevel,
		Diff:        d,
	}
}

// NewReplayedFileEdit builds a replay-mode FileEdit message, resolving
// the logical name to an active path among the currently watched
// top-level paths.
func NewReplayedFileEdit(logicalName string, subs []SubEdit, watched []string) FileEdit {
	return FileEdit{
		LogicalName: logicalName,
		ActivePath:  fileedit.MatchActivePath(logicalName, watched),
		Reproduce:   true,
		Subs:        subs,
	}
}

// ParseFileEditBody splits a FileEdit transcript body (as rendered by
// Description, minus the direction/tag prefix) into its logical name
// and tagged sub-edits.
func ParseFileEditBody(body string) (name string, subs []SubEdit) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", nil
	}
	name = fields[0]
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "C:"):
			subs = append(subs, SubEdit{Suffix: strings.TrimPrefix(f, "C:")})
		case strings.HasPrefix(f, "R:"):
			subs = append(subs, SubEdit{Suffix: strings.TrimPrefix(f, "R:"), Removed: true})
		}
	}
	return name, subs
}
