package route

import (
	"errors"
	"fmt"
	"regexp"
)

// Pattern is a compiled route pattern anchored to the full path.
type Pattern struct {
	re  *regexp.Regexp
	raw string
}

// Compile anchors pattern to the start and end of the input and compiles it.
func Compile(pattern string) (*Pattern, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Join(ErrInvalidPattern, fmt.Errorf("%q: %w", pattern, err))
	}
	return &Pattern{re: re, raw: pattern}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as registered, without anchors.
func (p *Pattern) String() string {
	return p.raw
}

// Groups returns the number of capturing groups in the pattern.
func (p *Pattern) Groups() int {
	return p.re.NumSubexp()
}

// Match reports whether path fully matches the pattern and returns the
// captured groups in left-to-right order. Groups that did not participate
// in the match are returned as empty strings.
func (p *Pattern) Match(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	args := make([]string, len(m)-1)
	copy(args, m[1:])
	return args, true
}
