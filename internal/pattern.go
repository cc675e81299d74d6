package internal

import (
	"cmp"
	"strings"
)

// Params holds the values of named path segments.
type Params map[string]string

// Get returns the value of a named segment or "".
func (p Params) Get(name string) string {
	return p[name]
}

type segment struct {
	value string
	param bool
}

// kind orders literal segments before parameter segments.
func (s segment) kind() int {
	if s.param {
		return 1
	}
	return 0
}

// Pattern is a parsed path template such as "/t/:username".
type Pattern struct {
	raw      string
	segments []segment
}

// ParsePattern parses a path template. Segments starting with ':' are named
// parameters; everything else is matched literally.
func ParsePattern(raw string) Pattern {
	parts := splitPath(raw)
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if name, ok := strings.CutPrefix(p, ":"); ok && name != "" {
			segs = append(segs, segment{value: name, param: true})
			continue
		}
		segs = append(segs, segment{value: p})
	}
	return Pattern{raw: raw, segments: segs}
}

// String returns the template the pattern was parsed from.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether path has the same number of segments as the
// pattern, every literal segment is equal and every parameter segment is
// non-empty. The extracted parameters are returned on success.
func (p Pattern) Match(path string) (Params, bool) {
	parts := splitPath(path)
	if len(parts) != len(p.segments) {
		return nil, false
	}

	var params Params
	for i, seg := range p.segments {
		switch {
		case seg.param:
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(Params, len(p.segments))
			}
			params[seg.value] = parts[i]
		case seg.value != parts[i]:
			return nil, false
		}
	}
	if params == nil {
		params = Params{}
	}
	return params, true
}

// compareSpecificity orders patterns so that at the first position where
// they differ, a literal segment wins over a parameter segment.
func compareSpecificity(a, b Pattern) int {
	for i := range min(len(a.segments), len(b.segments)) {
		if c := cmp.Compare(a.segments[i].kind(), b.segments[i].kind()); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.segments), len(b.segments))
}

// splitPath splits a request path into segments. Leading and trailing
// slashes are ignored, so "/" has zero segments and "/login/" equals "/login".
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
