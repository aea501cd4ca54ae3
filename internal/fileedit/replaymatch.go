package fileedit

import (
	"os"
	"path/filepath"
	"strings"
)

// MatchActivePath resolves a replayed FileEdit's logical name to an
// actual active path among the currently watched top-level paths: an
// exact basename match of the same file-vs-directory kind wins outright;
// otherwise the watched path whose basename shares the longest common
// prefix plus suffix with the logical name wins.
func MatchActivePath(logicalName string, watched []string) string {
	logicalName = rewriteCygdrive(logicalName)
	base := filepath.Base(logicalName)
	wantDir := strings.HasSuffix(logicalName, string(filepath.Separator))

	for _, w := range watched {
		if filepath.Base(w) == base && sameKind(w, wantDir) {
			return w
		}
	}

	best := ""
	bestScore := -1
	for _, w := range watched {
		score := commonPrefixLen(filepath.Base(w), base) + commonSuffixLen(filepath.Base(w), base)
		if score > bestScore {
			bestScore = score
			best = w
		}
	}
	return best
}

func sameKind(path string, wantDir bool) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir() == wantDir
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// rewriteCygdrive turns a Cygwin-style "/cygdrive/X/..." path into the
// native Windows "X:/..." form used by the active filesystem when the
// traffic server itself runs natively.
func rewriteCygdrive(p string) string {
	const prefix = "/cygdrive/"
	if !strings.HasPrefix(p, prefix) {
		return p
	}
	rest := p[len(prefix):]
	if len(rest) == 0 {
		return p
	}
	drive := rest[0]
	remainder := rest[1:]
	return strings.ToUpper(string(drive)) + ":" + remainder
}
