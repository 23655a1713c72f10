package model

import "regexp"

// identRe matches names that address exactly one parameter. Anything else
// is compiled as a pattern matching a family of resource keys.
var identRe = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

// Name identifies a parameter. It is either an exact identifier, or a
// regular expression matched by drivers against the concrete keys found in
// a resource, each match producing a structural copy of the parameter.
type Name struct {
	raw     string
	pattern *regexp.Regexp
}

// NewName builds a Name from its string form. An invalid pattern falls back
// to an exact name so that a malformed resource key never fails creation.
func NewName(s string) Name {
	n := Name{raw: s}
	if !identRe.MatchString(s) {
		if re, err := regexp.Compile(s); err == nil {
			n.pattern = re
		}
	}
	return n
}

func (n Name) String() string { return n.raw }

// IsPattern reports whether the name designates a family of parameters.
func (n Name) IsPattern() bool { return n.pattern != nil }

// Match reports whether the concrete key s is addressed by this name.
func (n Name) Match(s string) bool {
	if n.pattern == nil {
		return n.raw == s
	}
	loc := n.pattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
