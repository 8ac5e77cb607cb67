// Package frontmatter reads and writes the optional YAML header of guide
// pages. Pages are user-authored, so the reader is liberal: CRLF documents
// split at the right byte and an absent header is not an error. The only
// hard failure is an opening delimiter that never closes, which the
// validator surfaces as a finding rather than a crash.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter reports a frontmatter block that is opened but
// never closed.
var ErrMissingClosingDelimiter = errors.New("frontmatter block is opened but never closed")

const delimiter = "---"

// Split separates the YAML frontmatter from the Markdown body. had is
// false when the document carries no frontmatter; body is then the full
// input. The returned frontmatter excludes the delimiter lines.
func Split(content []byte) (fm, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		// An empty header, closed immediately.
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// ParseYAML decodes a raw frontmatter block (without delimiters) into a
// field map. An empty block decodes to an empty map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(fm) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// detectNewline picks the document's newline convention from its first
// line ending. Documents without any newline default to LF.
func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
