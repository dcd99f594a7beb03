package roster

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLabelFormat names a record by its section and site columns.
const DefaultLabelFormat = "{Section}-{Site}"

var (
	// ErrUnbalancedBraces reports a "{" without a closing "}" or a stray "}".
	ErrUnbalancedBraces = errors.New("label format has unbalanced braces")
	// ErrNestedBraces reports a "{" inside a placeholder.
	ErrNestedBraces = errors.New("label format has nested braces")
	// ErrEmptyPlaceholder reports "{}".
	ErrEmptyPlaceholder = errors.New("label format has an empty placeholder")
	// ErrUnknownColumn reports a placeholder that names no roster column.
	ErrUnknownColumn = errors.New("label format references an unknown column")
	// ErrClaimPlaceholder reports a placeholder naming the claim column.
	ErrClaimPlaceholder = errors.New("label format references the claim column")
)

type segment struct {
	text   string
	column bool
}

// Template renders record labels from a format such as "{Section}-{Site}".
// "{{" and "}}" produce literal braces.
type Template struct {
	source   string
	segments []segment
}

// ParseTemplate compiles format without checking column names.
func ParseTemplate(format string) (*Template, error) {
	t := &Template{source: format}
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			t.segments = append(t.segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(format[i+1:], "{}")
			if end < 0 {
				return nil, fmt.Errorf("%w: %q", ErrUnbalancedBraces, format)
			}
			end += i + 1
			if format[end] == '{' {
				return nil, fmt.Errorf("%w: %q", ErrNestedBraces, format)
			}
			name := strings.TrimSpace(format[i+1 : end])
			if name == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyPlaceholder, format)
			}
			flush()
			t.segments = append(t.segments, segment{text: name, column: true})
			i = end
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: %q", ErrUnbalancedBraces, format)
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

// CompileTemplate parses format and verifies every placeholder against the
// roster's columns.
func CompileTemplate(format string, r *Roster) (*Template, error) {
	t, err := ParseTemplate(format)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return t, nil
	}
	for _, col := range t.Columns() {
		if !r.HasColumn(col) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		if col == r.ClaimColumn() {
			return nil, fmt.Errorf("%w: %q", ErrClaimPlaceholder, col)
		}
	}
	return t, nil
}

// Columns lists the placeholder column names in order of appearance.
func (t *Template) Columns() []string {
	var out []string
	for _, seg := range t.segments {
		if seg.column {
			out = append(out, seg.text)
		}
	}
	return out
}

// Render substitutes the record's values into the template.
func (t *Template) Render(rec *Record) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if !seg.column {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(rec.Value(seg.text))
	}
	return b.String()
}

// String returns the source format.
func (t *Template) String() string {
	return t.source
}
