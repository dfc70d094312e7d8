package doxylint

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var commandPattern = regexp.MustCompile(`@\w+`)

// Classifier maps a command token to a severity.
type Classifier struct {
	allowed   map[string]struct{}
	forbidden map[string]struct{}
}

// NewClassifier builds a classifier. Forbidden wins when a command is in both lists.
func NewClassifier(allowed, forbidden []string) *Classifier {
	c := &Classifier{
		allowed:   make(map[string]struct{}, len(allowed)),
		forbidden: make(map[string]struct{}, len(forbidden)),
	}
	for _, a := range allowed {
		c.allowed[a] = struct{}{}
	}
	for _, f := range forbidden {
		c.forbidden[f] = struct{}{}
	}
	return c
}

// Classify returns SeverityError for forbidden commands, SeverityWarning for unknown
// ones and SeverityInfo for allowed ones.
func (c *Classifier) Classify(cmd string) Severity {
	if _, ok := c.forbidden[cmd]; ok {
		return SeverityError
	}
	if _, ok := c.allowed[cmd]; ok {
		return SeverityInfo
	}
	return SeverityWarning
}

// Scan reads source line by line and reports every non-allowed command found inside
// a /** or /*! block. A line that opens a block is scanned; a line containing */
// ends it after being scanned.
func (c *Classifier) Scan(path string, r io.Reader) ([]Finding, error) {
	var findings []Finding
	inComment := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := sc.Text()
		if strings.Contains(line, "/**") || strings.Contains(line, "/*!") {
			inComment = true
		}
		if inComment {
			for _, cmd := range commandPattern.FindAllString(line, -1) {
				switch c.Classify(cmd) {
				case SeverityError:
					findings = append(findings, Finding{
						FilePath: path, Line: lineNum, Command: cmd, Severity: SeverityError,
						Message: "Forbidden Doxygen command: " + cmd,
					})
				case SeverityWarning:
					findings = append(findings, Finding{
						FilePath: path, Line: lineNum, Command: cmd, Severity: SeverityWarning,
						Message: "Unknown Doxygen command: " + cmd,
					})
				}
			}
		}
		if strings.Contains(line, "*/") {
			inComment = false
		}
	}
	return findings, sc.Err()
}
