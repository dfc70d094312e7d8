// Package buildstate advances the build counter and refreshes the build timestamp kept
// as #define macros in the checked-in version header.
package buildstate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
)

// Macro names in EARS_versionDef.h.
const (
	MacroCounter     = "EARS_APP_VERSION_PATCH"
	MacroTimestamp   = "EARS_APP_BUILD_TIMESTAMP"
	MacroMinor       = "EARS_APP_VERSION_MINOR"
	MacroBuildNumber = "EARS_APP_BUILD_NUMBER"
)

// TimestampLayout formats the 14-digit YYYYMMDDHHMMSS build timestamp.
const TimestampLayout = "20060102150405"

func defineLine(macro string) string {
	return `(?m)^([ \t]*#[ \t]*define[ \t]+` + macro + `[ \t]+)`
}

// The canonical counter form is quoted (#define EARS_APP_VERSION_PATCH "67"); a bare
// integer is the legacy form and is rewritten quoted.
var (
	counterQuoted = regexp.MustCompile(defineLine(MacroCounter) + `"(\d+)"`)
	counterBare   = regexp.MustCompile(defineLine(MacroCounter) + `(\d+)\b`)
	counterAny    = regexp.MustCompile(defineLine(MacroCounter))
	timestampRe   = regexp.MustCompile(defineLine(MacroTimestamp) + `(\d+)\b`)
	buildNumberRe = regexp.MustCompile(defineLine(MacroBuildNumber) + `(\d+)\b`)

	anchors = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^[ \t]*#[ \t]*define[ \t]+` + MacroTimestamp + `\b.*$`),
		regexp.MustCompile(`(?m)^[ \t]*#[ \t]*define[ \t]+` + MacroMinor + `\b.*$`),
	}
)

// State is the build state after an update.
type State struct {
	Previous    int
	Counter     int
	Timestamp   string
	BuildNumber *int

	// Inserted is set when the counter macro was missing and has been added.
	Inserted bool
	// Migrated is set when a bare integer counter was rewritten in quoted form.
	Migrated bool
	// TimestampMissing is set when the header has no timestamp macro.
	TimestampMissing bool
}

// Options select optional updates.
type Options struct {
	BuildNumber bool
}

// Update computes the new header content. The input is never partially applied: on
// error the returned content is empty and the caller must not write anything.
func Update(content string, now time.Time, opts Options) (string, State, error) {
	var st State

	out, err := advanceCounter(content, &st)
	if err != nil {
		return "", State{}, err
	}

	st.Timestamp = now.Format(TimestampLayout)
	if loc := timestampRe.FindStringSubmatchIndex(out); loc != nil {
		out = out[:loc[4]] + st.Timestamp + out[loc[5]:]
	} else {
		st.TimestampMissing = true
	}

	if opts.BuildNumber {
		if loc := buildNumberRe.FindStringSubmatchIndex(out); loc != nil {
			prev, err := strconv.Atoi(out[loc[4]:loc[5]])
			if err != nil {
				return "", State{}, parseError(MacroBuildNumber, err)
			}
			n, err := next(MacroBuildNumber, prev)
			if err != nil {
				return "", State{}, err
			}
			st.BuildNumber = &n
			out = out[:loc[4]] + strconv.Itoa(n) + out[loc[5]:]
		}
	}
	return out, st, nil
}

func advanceCounter(content string, st *State) (string, error) {
	if loc := counterQuoted.FindStringSubmatchIndex(content); loc != nil {
		n, err := strconv.Atoi(content[loc[4]:loc[5]])
		if err != nil {
			return "", parseError(MacroCounter, err)
		}
		if st.Counter, err = next(MacroCounter, n); err != nil {
			return "", err
		}
		st.Previous = n
		return content[:loc[4]] + strconv.Itoa(st.Counter) + content[loc[5]:], nil
	}

	if loc := counterBare.FindStringSubmatchIndex(content); loc != nil {
		n, err := strconv.Atoi(content[loc[4]:loc[5]])
		if err != nil {
			return "", parseError(MacroCounter, err)
		}
		if st.Counter, err = next(MacroCounter, n); err != nil {
			return "", err
		}
		st.Previous, st.Migrated = n, true
		return content[:loc[4]] + strconv.Quote(strconv.Itoa(st.Counter)) + content[loc[5]:], nil
	}

	if counterAny.MatchString(content) {
		return "", foundationerrors.ParseError("unrecognised " + MacroCounter + " value").Build()
	}

	for _, anchor := range anchors {
		loc := anchor.FindStringIndex(content)
		if loc == nil {
			continue
		}
		// loc[1] sits on the anchor's line break, or at the end of the file.
		end, eol := loc[1], "\n"
		if strings.HasSuffix(content[loc[0]:end], "\r") {
			end, eol = end-1, "\r\n"
		}
		st.Counter, st.Inserted = 1, true
		line := fmt.Sprintf("#define %s \"1\"", MacroCounter)
		return content[:end] + eol + line + content[end:], nil
	}

	return "", foundationerrors.ParseError("no "+MacroCounter+" macro and no anchor to insert it after").
		WithContext("anchors", MacroTimestamp+","+MacroMinor).
		Build()
}

// next returns n+1, refusing to wrap past math.MaxInt into a negative value.
func next(macro string, n int) (int, error) {
	if n == math.MaxInt {
		return 0, parseError(macro, fmt.Errorf("value %d cannot be incremented", n))
	}
	return n + 1, nil
}

func parseError(macro string, err error) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryParse, "invalid "+macro+" value").
		Fatal().
		Build()
}
