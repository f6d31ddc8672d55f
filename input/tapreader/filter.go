package tapreader

import (
	"fmt"

	"github.com/gobwas/glob"
)

// StreamFilter selects which declared streams are accepted, by glob patterns on stream names
//
// Messages of rejected streams are dropped wholesale before dispatch, so a rejected stream
// never registers and never affects checkpoint safety
type StreamFilter struct {
	include []glob.Glob // empty means accept all
	exclude []glob.Glob
}

// NewStreamFilter compiles include and exclude patterns; exclusion wins over inclusion
func NewStreamFilter(includePatterns []string, excludePatterns []string) (*StreamFilter, error) {
	include, ierr := compilePatterns(includePatterns)
	if ierr != nil {
		return nil, fmt.Errorf("include: %w", ierr)
	}
	exclude, eerr := compilePatterns(excludePatterns)
	if eerr != nil {
		return nil, fmt.Errorf("exclude: %w", eerr)
	}
	return &StreamFilter{include: include, exclude: exclude}, nil
}

// Accept reports whether messages of the given stream should be processed
func (filter *StreamFilter) Accept(stream string) bool {
	for _, pattern := range filter.exclude {
		if pattern.Match(stream) {
			return false
		}
	}
	if len(filter.include) == 0 {
		return true
	}
	for _, pattern := range filter.include {
		if pattern.Match(stream) {
			return true
		}
	}
	return false
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for i, pattern := range patterns {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern[%d] '%s': %w", i, pattern, err)
		}
		compiled = append(compiled, matcher)
	}
	return compiled, nil
}
