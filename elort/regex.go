package elort

import (
	"regexp"
	"regexp/syntax"
	"sync"
)

// MaxPatternLength is the longest pattern CompilePattern accepts.
const MaxPatternLength = 1024

// maxCached bounds the patterns Matches keeps compiled.
const maxCached = 256

// CompilePattern compiles a pattern for use with Match. It returns nil when
// the pattern is invalid, longer than MaxPatternLength, or repeats a
// sub-expression that is itself repeated, such as (a+)+. A nil pattern never
// matches.
func CompilePattern(pattern string) *regexp.Regexp {
	if len(pattern) > MaxPatternLength {
		return nil
	}
	tree, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil || nestedRepeat(tree, false) {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

func nestedRepeat(re *syntax.Regexp, inRepeat bool) bool {
	repeat := false
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		repeat = true
	case syntax.OpRepeat:
		repeat = re.Max == -1 || re.Max > 1
	}
	if repeat && inRepeat {
		return true
	}
	for _, sub := range re.Sub {
		if nestedRepeat(sub, inRepeat || repeat) {
			return true
		}
	}
	return false
}

// Match reports whether s contains a match of re. A nil re never matches.
func Match(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}

var patterns = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: map[string]*regexp.Regexp{}}

// Matches compiles pattern with CompilePattern and matches s against it.
// Compiled patterns are cached.
func Matches(s, pattern string) bool {
	patterns.Lock()
	re, ok := patterns.m[pattern]
	if !ok {
		re = CompilePattern(pattern)
		if len(patterns.m) >= maxCached {
			patterns.m = map[string]*regexp.Regexp{}
		}
		patterns.m[pattern] = re
	}
	patterns.Unlock()
	return Match(re, s)
}
