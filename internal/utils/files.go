package utils

import (
	"bufio"
	"io"
	"path/filepath"
	"sort"
)

// NewestMatch returns the lexically greatest file matching the glob under
// dir. The reference CSVs carry a date stamp in their name, so lexically
// greatest means most recent.
func NewestMatch(dir, pattern string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true
}

// StripBOM drops a leading UTF-8 byte order mark; the EDINET reference
// files are written with utf-8-sig. Peek is used so the mark is removed
// even when the underlying reader returns short reads.
func StripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
