package message

import (
	"fmt"
	"strings"
)

// TemplateError reports a malformed substitution marker.
type TemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q at offset %d: %s", e.Template, e.Offset, e.Reason)
}

// Parse compiles a template string. %1 through %9 substitute the
// corresponding positional argument and %% produces a literal percent
// sign. A template without markers compiles to a single Literal.
func Parse(tmpl string) (Message, error) {
	if !strings.Contains(tmpl, "%") {
		return Literal(tmpl), nil
	}

	var parts Concat
	start := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 >= len(tmpl) {
			return nil, &TemplateError{Template: tmpl, Offset: i, Reason: "dangling %"}
		}
		if i > start {
			parts = append(parts, Literal(tmpl[start:i]))
		}
		switch c := tmpl[i+1]; {
		case c == '%':
			parts = append(parts, Literal("%"))
		case c >= '1' && c <= '9':
			parts = append(parts, Arg(c-'1'))
		default:
			return nil, &TemplateError{Template: tmpl, Offset: i, Reason: fmt.Sprintf("unknown marker %%%c", c)}
		}
		i++
		start = i + 1
	}
	if start < len(tmpl) {
		parts = append(parts, Literal(tmpl[start:]))
	}
	return parts, nil
}

// MustParse is like Parse but panics on a malformed template. It is meant
// for templates fixed at compile time.
func MustParse(tmpl string) Message {
	m, err := Parse(tmpl)
	if err != nil {
		panic(err)
	}
	return m
}

// Arity returns one more than the highest argument index referenced in m,
// or zero if m references no arguments. Cycle and Select alternatives are
// all inspected.
func Arity(m Message) int {
	switch m := m.(type) {
	case Arg:
		return int(m) + 1
	case Concat:
		return maxArity(m)
	case Select:
		return maxArity(m)
	case *Cycle:
		return maxArity(m.alts)
	case *Bound:
		return Arity(m.M)
	default:
		return 0
	}
}

func maxArity(ms []Message) int {
	n := 0
	for _, m := range ms {
		if a := Arity(m); a > n {
			n = a
		}
	}
	return n
}
