// Package patch rewrites generated UI source so its call sites match the pinned
// LVGL API. Rules are regular-expression substitutions over the whole buffer; they are
// written so a second pass over already-patched text matches nothing.
package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction selects whether a rule appends or strips the trailing marker argument.
type Direction int

const (
	// AddParam turns fn(a, b) into fn(a, b, MARKER).
	AddParam Direction = iota
	// RemoveParam turns fn(a, b, MARKER) into fn(a, b).
	RemoveParam
)

func (d Direction) String() string {
	switch d {
	case AddParam:
		return "add-param"
	case RemoveParam:
		return "remove-param"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// One call argument: no commas or parentheses, surrounding blanks trimmed.
const argPattern = `\s*([^,()]+?)\s*`

// Rule is an immutable call-site rewrite for a single function.
type Rule struct {
	function  string
	direction Direction
	token     string
	markers   []string

	pattern  *regexp.Regexp
	template string
	guard    *regexp.Regexp
}

// NewAddParamRule returns a rule appending token as a third argument to two-argument
// calls of function. Calls whose arguments already mention one of markers (token is
// always included) are left alone.
func NewAddParamRule(function, token string, markers ...string) Rule {
	all := uniqueMarkers(token, markers)
	return Rule{
		function:  function,
		direction: AddParam,
		token:     token,
		markers:   all,
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(function) +
			`\s*\(` + argPattern + `,` + argPattern + `\)`),
		template: function + "(${1}, ${2}, " + token + ")",
		guard:    markerRegexp(all),
	}
}

// NewRemoveParamRule returns a rule stripping a trailing argument equal to one of
// markers from three-argument calls of function.
func NewRemoveParamRule(function string, markers ...string) Rule {
	if len(markers) == 0 {
		panic("patch: remove rule for " + function + " needs at least one marker")
	}
	all := uniqueMarkers(markers[0], markers[1:])
	return Rule{
		function:  function,
		direction: RemoveParam,
		token:     all[0],
		markers:   all,
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(function) +
			`\s*\(` + argPattern + `,` + argPattern + `,\s*` + alternation(all) + `\s*\)`),
		template: function + "(${1}, ${2})",
		guard:    markerRegexp(all),
	}
}

func uniqueMarkers(first string, rest []string) []string {
	out := []string{first}
	for _, m := range rest {
		dup := false
		for _, seen := range out {
			if seen == m {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

func alternation(markers []string) string {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

func markerRegexp(markers []string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + alternation(markers) + `\b`)
}

// Function returns the targeted function name.
func (r Rule) Function() string { return r.function }

// Direction returns the rewrite direction.
func (r Rule) Direction() Direction { return r.direction }

// Token returns the marker argument the rule adds, or the canonical one it removes.
func (r Rule) Token() string { return r.token }

// Name identifies the rule in logs and metrics, e.g. "lv_bar_set_value/add-param".
func (r Rule) Name() string { return r.function + "/" + r.direction.String() }

// Inverse returns the rule undoing r. Rewritten calls are emitted in canonical form
// ("f(a, b)" on one line), so an Apply followed by the inverse restores the original
// text exactly only when it was already canonical.
func (r Rule) Inverse() Rule {
	if r.direction == AddParam {
		return NewRemoveParamRule(r.function, r.markers...)
	}
	return NewAddParamRule(r.function, r.token, r.markers...)
}

// Match is one call site a rule would rewrite.
type Match struct {
	Offset int
	Line   int
	Text   string
}

// Find lists the call sites r would rewrite in src.
func (r Rule) Find(src string) []Match {
	var out []Match
	for _, loc := range r.matches(src) {
		out = append(out, Match{
			Offset: loc[0],
			Line:   strings.Count(src[:loc[0]], "\n") + 1,
			Text:   src[loc[0]:loc[1]],
		})
	}
	return out
}

// Apply rewrites every eligible call site and returns the new text with the number of
// substitutions made.
func (r Rule) Apply(src string) (string, int) {
	locs := r.matches(src)
	if len(locs) == 0 {
		return src, 0
	}
	var b strings.Builder
	b.Grow(len(src) + len(locs)*(len(r.token)+2))
	last := 0
	for _, loc := range locs {
		b.WriteString(src[last:loc[0]])
		b.Write(r.pattern.ExpandString(nil, r.template, src, loc))
		last = loc[1]
	}
	b.WriteString(src[last:])
	return b.String(), len(locs)
}

func (r Rule) matches(src string) [][]int {
	all := r.pattern.FindAllStringSubmatchIndex(src, -1)
	if r.direction != AddParam {
		return all
	}
	kept := all[:0]
	for _, loc := range all {
		if r.guard.MatchString(src[loc[2]:loc[3]]) || r.guard.MatchString(src[loc[4]:loc[5]]) {
			continue
		}
		kept = append(kept, loc)
	}
	return kept
}
