package domain

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	etoerr "eto.dev/pkg/eto/internal/errors"
	m "eto.dev/pkg/eto/internal/model"
)

// LogFileName is the log written by the eto CLI next to the tree it updates.
// It is never tracked.
const LogFileName = "eto.log"

// ignoreSet is a compiled list of doublestar patterns.
//
// A pattern containing no separator also matches the base name of a path at
// any depth, so "*.log" ignores "logs/today.log" as well as "today.log".
type ignoreSet []string

func compileIgnores(patterns []string) (ignoreSet, error) {
	set := make(ignoreSet, 0, len(patterns)+1)

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, etoerr.ErrBadIgnorePattern(pattern)
		}

		set = append(set, pattern)
	}

	return append(set, LogFileName), nil
}

// Match reports whether rel is ignored.
func (s ignoreSet) Match(rel m.RelPath) bool {
	name := string(rel)
	base := path.Base(name)

	for _, pattern := range s {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}

		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}

	return false
}
