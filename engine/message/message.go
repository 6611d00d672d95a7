// Package message implements the composable message trees that produce
// all story text. Every node renders to a string on demand; only Cycle
// keeps state between renders.
package message

import (
	"fmt"
	"strings"
)

// Message is a node in a message tree. Render produces the node's text
// for the given alternative index and positional arguments.
type Message interface {
	Render(alt int, args ...any) (string, error)
}

// ArgError reports a positional argument reference outside the arguments
// supplied to Render. It is an authoring bug, not a player error.
type ArgError struct {
	Index int // zero-based
	Count int
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("message argument %%%d out of range: %d argument(s) supplied", e.Index+1, e.Count)
}

// Literal is fixed text.
type Literal string

// Render returns the text unchanged.
func (l Literal) Render(int, ...any) (string, error) { return string(l), nil }

// Concat renders its parts in order and joins the results.
type Concat []Message

// Render renders every part with the same alternative index.
func (c Concat) Render(alt int, args ...any) (string, error) {
	var b strings.Builder
	for _, m := range c {
		s, err := m.Render(alt, args...)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Arg substitutes a positional argument. Arg(0) corresponds to %1 in a
// template.
type Arg int

// Render returns the string form of the argument.
func (a Arg) Render(_ int, args ...any) (string, error) {
	i := int(a)
	if i < 0 || i >= len(args) {
		return "", &ArgError{Index: i, Count: len(args)}
	}
	return fmt.Sprint(args[i]), nil
}

// Select picks one alternative by index. Indexes below zero pick the
// first alternative and indexes past the end pick the last.
type Select []Message

// Render renders the chosen alternative.
func (s Select) Render(alt int, args ...any) (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	return s[clamp(alt, len(s))].Render(0, args...)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Cycle renders its alternatives round-robin: each render uses the
// current alternative and then advances to the next, wrapping to the
// first. Each Cycle owns its counter.
type Cycle struct {
	alts []Message
	next int
}

// NewCycle creates a cycle starting at the first alternative.
func NewCycle(alts ...Message) *Cycle {
	return &Cycle{alts: alts}
}

// Render renders the current alternative and advances the counter. The
// counter advances even when rendering fails.
func (c *Cycle) Render(alt int, args ...any) (string, error) {
	if len(c.alts) == 0 {
		return "", nil
	}
	m := c.alts[c.next]
	c.next = (c.next + 1) % len(c.alts)
	return m.Render(alt, args...)
}

// Next returns the index the next render will use.
func (c *Cycle) Next() int { return c.next }

// Len returns the number of alternatives.
func (c *Cycle) Len() int { return len(c.alts) }

// StateSource supplies an alternative index at render time, typically a
// world entity's current state.
type StateSource interface {
	State() int
}

// StateFunc adapts a function to StateSource.
type StateFunc func() int

// State calls f.
func (f StateFunc) State() int { return f() }

// Bound renders M with the alternative index read from Src on every
// render, so state changes after construction are seen.
type Bound struct {
	M   Message
	Src StateSource
}

// Bind binds m to src.
func Bind(m Message, src StateSource) *Bound {
	return &Bound{M: m, Src: src}
}

// Render ignores alt and uses the source's current state instead.
func (b *Bound) Render(_ int, args ...any) (string, error) {
	return b.M.Render(b.Src.State(), args...)
}
