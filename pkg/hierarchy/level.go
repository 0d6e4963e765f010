package hierarchy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/reqs/errors"
	"gopkg.in/yaml.v3"
)

// Level is the hierarchical position of an item inside its document, e.g.
// 1.2.3. A trailing 0 marks the item as a heading: 1.2.0 is the heading of
// section 1.2.
type Level struct {
	parts   []int
	heading bool
}

// ParseLevel parses "1", "1.2", "1.2.0" and the like.
func ParseLevel(text string) (Level, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Level{}, errors.Invalid("level", "empty level")
	}

	fields := strings.Split(text, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return Level{}, errors.Invalid("level", fmt.Sprintf("%q is not a level", text))
		}
		parts = append(parts, n)
	}

	lvl := Level{}
	if len(parts) > 1 && parts[len(parts)-1] == 0 {
		lvl.heading = true
		parts = parts[:len(parts)-1]
	}
	for _, p := range parts {
		if p == 0 {
			return Level{}, errors.Invalid("level", fmt.Sprintf("%q has a zero part", text))
		}
	}
	lvl.parts = parts
	return lvl, nil
}

// MustLevel is ParseLevel for constants.
func MustLevel(text string) Level {
	lvl, err := ParseLevel(text)
	if err != nil {
		panic(err)
	}
	return lvl
}

// IsZero reports whether the level is unset.
func (l Level) IsZero() bool { return len(l.parts) == 0 }

// Depth is the number of parts, not counting a heading's trailing 0.
func (l Level) Depth() int { return len(l.parts) }

// Heading reports whether the level ends in .0.
func (l Level) Heading() bool { return l.heading }

// String implements fmt.Stringer.
func (l Level) String() string {
	if l.IsZero() {
		return ""
	}
	fields := make([]string, 0, len(l.parts)+1)
	for _, p := range l.parts {
		fields = append(fields, strconv.Itoa(p))
	}
	if l.heading {
		fields = append(fields, "0")
	}
	return strings.Join(fields, ".")
}

// WithHeading returns a copy with the heading marker set or cleared.
func (l Level) WithHeading(heading bool) Level {
	return Level{parts: l.clone(), heading: heading}
}

// Next returns the following sibling level: 1.2 -> 1.3.
func (l Level) Next() Level {
	if l.IsZero() {
		return Level{parts: []int{1}}
	}
	parts := l.clone()
	parts[len(parts)-1]++
	return Level{parts: parts}
}

// Indent moves the level one step deeper: 1.2 -> 1.2.1.
func (l Level) Indent() Level {
	parts := append(l.clone(), 1)
	return Level{parts: parts, heading: l.heading}
}

// Dedent moves the level one step up, after its former parent: 1.2.3 -> 1.3.
// ok is false when the level is already at the top.
func (l Level) Dedent() (Level, bool) {
	if len(l.parts) < 2 {
		return l, false
	}
	parts := l.clone()[:len(l.parts)-1]
	parts[len(parts)-1]++
	return Level{parts: parts, heading: l.heading}, true
}

// Compare orders levels the way items appear in a document.
func (l Level) Compare(o Level) int {
	for i := 0; i < len(l.parts) && i < len(o.parts); i++ {
		if l.parts[i] != o.parts[i] {
			if l.parts[i] < o.parts[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(l.parts) < len(o.parts):
		return -1
	case len(l.parts) > len(o.parts):
		return 1
	case l.heading && !o.heading:
		return -1
	case !l.heading && o.heading:
		return 1
	}
	return 0
}

func (l Level) clone() []int {
	out := make([]int, len(l.parts))
	copy(out, l.parts)
	return out
}

// yamlValue is the value written to an item file: an integer for top-level
// items, a string otherwise so that 1.10 survives a round trip.
func (l Level) yamlValue() interface{} {
	if len(l.parts) == 1 && !l.heading {
		return l.parts[0]
	}
	return l.String()
}

func levelFromNode(n *yaml.Node) (Level, error) {
	if n == nil || n.Kind == 0 || n.Tag == "!!null" {
		return Level{parts: []int{1}}, nil
	}
	if n.Kind != yaml.ScalarNode {
		return Level{}, errors.Invalid("level", fmt.Sprintf("line %d: not a scalar", n.Line))
	}
	return ParseLevel(n.Value)
}
