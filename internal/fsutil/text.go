package fsutil

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text is a decoded UTF-8 text file. BOM records whether the file started with a
// byte-order mark so it can be written back unchanged.
type Text struct {
	Body string
	BOM  bool
}

// DecodeText strips an optional UTF-8 BOM and rejects invalid UTF-8.
func DecodeText(raw []byte) (Text, error) {
	hasBOM := bytes.HasPrefix(raw, utf8BOM)
	decoder := transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator)
	body, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return Text{}, err
	}
	return Text{Body: string(body), BOM: hasBOM}, nil
}

// ReadText reads and decodes path.
func ReadText(path string) (Text, error) {
	// #nosec G304 -- hook target paths come from configuration
	raw, err := os.ReadFile(path)
	if err != nil {
		return Text{}, err
	}
	text, err := DecodeText(raw)
	if err != nil {
		return Text{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return text, nil
}

// Bytes re-encodes the text, restoring the BOM if the original had one.
func (t Text) Bytes() []byte {
	if !t.BOM {
		return []byte(t.Body)
	}
	out := make([]byte, 0, len(utf8BOM)+len(t.Body))
	out = append(out, utf8BOM...)
	return append(out, t.Body...)
}

// WriteText atomically writes t to path.
func WriteText(path string, t Text) error {
	return WriteFileAtomic(path, t.Bytes())
}
