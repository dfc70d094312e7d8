// Package toolversion records the compiler and platform versions a firmware image was
// built with as a generated C header.
package toolversion

import (
	"fmt"
	"regexp"
	"strconv"
)

// Unknown is the version string written when extraction fails.
const Unknown = "UNKNOWN"

// Components named in logs and the generated header.
const (
	ComponentCompiler = "xtensa-compiler"
	ComponentPlatform = "espressif-platform"
)

var semverPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Record is the version of one toolchain component. Numeric fields are zero when
// Version is Unknown.
type Record struct {
	Component string
	Version   string
	Major     int
	Minor     int
	Patch     int
}

// UnknownRecord returns the fallback record for component.
func UnknownRecord(component string) Record {
	return Record{Component: component, Version: Unknown}
}

// Known reports whether a version was extracted.
func (r Record) Known() bool { return r.Version != Unknown && r.Version != "" }

// ParseRecord extracts the first MAJOR.MINOR.PATCH triple found in text.
func ParseRecord(component, text string) (Record, bool) {
	m := semverPattern.FindStringSubmatch(text)
	if m == nil {
		return UnknownRecord(component), false
	}
	nums := [3]int{}
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return UnknownRecord(component), false
		}
		nums[i] = n
	}
	return Record{
		Component: component,
		Version:   fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]),
		Major:     nums[0],
		Minor:     nums[1],
		Patch:     nums[2],
	}, true
}
