// Package hierarchy loads, edits and persists a tree of requirement documents.
//
// A project is a directory tree in which every document lives in its own
// directory, marked by a .doorstop.yml settings file, and every item is a
// YAML file named after its UID. Documents form a tree through their parent
// prefix; exactly one document has no parent.
package hierarchy

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/grovetools/reqs/errors"
)

// Prefix identifies a document, e.g. "REQ".
type Prefix string

// UID identifies an item, e.g. "REQ-001".
type UID string

// String implements fmt.Stringer.
func (u UID) String() string { return string(u) }

// ParseUID splits text into prefix, separator and number.
// Surrounding whitespace is ignored. The prefix must start with a letter and
// the number must be non-empty.
func ParseUID(text string) (UID, Prefix, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", 0, errors.Invalid("uid", "empty identifier")
	}

	end := len(text)
	start := end
	for start > 0 && text[start-1] >= '0' && text[start-1] <= '9' {
		start--
	}
	if start == end {
		return "", "", 0, errors.Invalid("uid", fmt.Sprintf("%q has no number", text))
	}

	number, err := strconv.Atoi(text[start:])
	if err != nil {
		return "", "", 0, errors.Invalid("uid", fmt.Sprintf("%q: %v", text, err))
	}

	prefix := text[:start]
	if n := len(prefix); n > 0 && isSeparator(prefix[n-1]) {
		prefix = prefix[:n-1]
	}
	if prefix == "" || !unicode.IsLetter(rune(prefix[0])) {
		return "", "", 0, errors.Invalid("uid", fmt.Sprintf("%q has no prefix", text))
	}
	for _, r := range prefix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", "", 0, errors.Invalid("uid", fmt.Sprintf("%q has an invalid prefix", text))
		}
	}

	return UID(text), Prefix(prefix), number, nil
}

// FormatUID builds the UID of item number n of a document.
func FormatUID(prefix Prefix, sep string, digits, n int) UID {
	return UID(fmt.Sprintf("%s%s%0*d", prefix, sep, digits, n))
}

// Prefix returns the document prefix of the UID, or "" when it does not parse.
func (u UID) Prefix() Prefix {
	_, p, _, err := ParseUID(string(u))
	if err != nil {
		return ""
	}
	return p
}

func isSeparator(c byte) bool {
	return c == '-' || c == '_' || c == '.'
}
