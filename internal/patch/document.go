package patch

import (
	"git.home.luguber.info/inful/earshooks/internal/fsutil"
)

// Document is a source file loaded once, rewritten in memory and written back only
// when its content changed.
type Document struct {
	Path     string
	original fsutil.Text
	current  string
}

// LoadDocument reads path, remembering whether it carried a UTF-8 BOM.
func LoadDocument(path string) (*Document, error) {
	text, err := fsutil.ReadText(path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, original: text, current: text.Body}, nil
}

// NewDocument wraps in-memory content; Save writes it to path.
func NewDocument(path, content string) *Document {
	return &Document{Path: path, original: fsutil.Text{Body: content}, current: content}
}

// RuleCount is the number of substitutions one rule made.
type RuleCount struct {
	Rule  string
	Count int
}

// Apply runs rules in order over the current content.
func (d *Document) Apply(rules []Rule) []RuleCount {
	counts := make([]RuleCount, 0, len(rules))
	for _, r := range rules {
		next, n := r.Apply(d.current)
		d.current = next
		counts = append(counts, RuleCount{Rule: r.Name(), Count: n})
	}
	return counts
}

// Content returns the current text without BOM.
func (d *Document) Content() string { return d.current }

// Changed reports whether Apply modified the content.
func (d *Document) Changed() bool { return d.current != d.original.Body }

// Save writes the current content atomically, restoring the original BOM. It is a no-op
// when nothing changed.
func (d *Document) Save() (bool, error) {
	if !d.Changed() {
		return false, nil
	}
	if err := fsutil.WriteText(d.Path, fsutil.Text{Body: d.current, BOM: d.original.BOM}); err != nil {
		return false, err
	}
	d.original.Body = d.current
	return true, nil
}
