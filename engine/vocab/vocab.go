// Package vocab maps raw input tokens to vocabulary entries.
// Intentionally dumb: fixed vocabulary, exact/abbreviation/prefix matching.
package vocab

import (
	"errors"
	"fmt"
	"strings"
)

// MatchMode controls whether an entry can be reached by a prefix of its text.
type MatchMode int

const (
	// Exact entries match only their full text or an abbreviation.
	Exact MatchMode = iota
	// Prefix entries also match any leading substring of their text.
	Prefix
)

func (m MatchMode) String() string {
	if m == Prefix {
		return "prefix"
	}
	return "exact"
}

// Entry is a single vocabulary word. Identity is by pointer: two entries
// with equal text are still different words.
type Entry struct {
	text    string
	mode    MatchMode
	abbrevs []string
}

// NewEntry creates an entry. The text is stored lowercase.
func NewEntry(text string, mode MatchMode) *Entry {
	return &Entry{text: strings.ToLower(text), mode: mode}
}

// Text returns the canonical lowercase text.
func (e *Entry) Text() string { return e.text }

// Mode returns the entry's match mode.
func (e *Entry) Mode() MatchMode { return e.mode }

// String returns the canonical text, so entries substitute cleanly into messages.
func (e *Entry) String() string { return e.text }

// AddAbbreviation registers an abbreviation that matches regardless of mode.
func (e *Entry) AddAbbreviation(abbrev string) {
	abbrev = strings.ToLower(abbrev)
	if e.IsAbbreviation(abbrev) {
		return
	}
	e.abbrevs = append(e.abbrevs, abbrev)
}

// Abbreviations returns a copy of the entry's abbreviations.
func (e *Entry) Abbreviations() []string {
	return append([]string(nil), e.abbrevs...)
}

// IsAbbreviation reports whether token is one of the entry's abbreviations.
func (e *Entry) IsAbbreviation(token string) bool {
	token = strings.ToLower(token)
	for _, a := range e.abbrevs {
		if a == token {
			return true
		}
	}
	return false
}

// Term is a named set of entries filling one slot of a command, or a set
// of noise words.
type Term struct {
	name    string
	entries []*Entry
}

// NewTerm creates an empty term.
func NewTerm(name string) *Term {
	return &Term{name: name}
}

// Name returns the term's name.
func (t *Term) Name() string { return t.name }

// Add appends entries. Entries already present are skipped.
func (t *Term) Add(entries ...*Entry) {
	for _, e := range entries {
		if e != nil && !t.Contains(e) {
			t.entries = append(t.entries, e)
		}
	}
}

// Contains reports whether e is a member of the term.
func (t *Term) Contains(e *Entry) bool {
	if t == nil || e == nil {
		return false
	}
	for _, x := range t.entries {
		if x == e {
			return true
		}
	}
	return false
}

// Entries returns the term's entries in insertion order.
func (t *Term) Entries() []*Entry {
	return append([]*Entry(nil), t.entries...)
}

// Len returns the number of entries in the term.
func (t *Term) Len() int { return len(t.entries) }

// Outcome classifies a resolution.
type Outcome int

const (
	Found Outcome = iota
	Unknown
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Unknown:
		return "unknown"
	default:
		return "ambiguous"
	}
}

// Result is the outcome of resolving one token. Entry is set only when
// Outcome is Found.
type Result struct {
	Entry   *Entry
	Outcome Outcome
}

// Resolve maps token to an entry. An exact (case-insensitive) or
// abbreviation hit returns immediately, even if other entries would
// prefix-match. Otherwise prefix-mode entries starting with the token are
// counted across the whole scan: one is a match, more is ambiguous, none
// is unknown.
func Resolve(token string, entries []*Entry) Result {
	lower := strings.ToLower(token)

	var candidate *Entry
	count := 0
	for _, e := range entries {
		abbrev := e.IsAbbreviation(lower)
		if e.text == lower || abbrev {
			return Result{Entry: e, Outcome: Found}
		}
		if e.mode == Prefix && strings.HasPrefix(e.text, lower) && !abbrev {
			if count == 0 {
				candidate = e
			}
			count++
		}
	}

	switch count {
	case 0:
		return Result{Outcome: Unknown}
	case 1:
		return Result{Entry: candidate, Outcome: Found}
	default:
		return Result{Outcome: Ambiguous}
	}
}

// ErrModeConflict is returned when a word is re-registered with a
// different match mode.
var ErrModeConflict = errors.New("word registered with differing match modes")

// Vocabulary is the set of all entries known to a story, in registration order.
type Vocabulary struct {
	entries []*Entry
	byText  map[string]*Entry
}

// New creates an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{byText: map[string]*Entry{}}
}

// Word returns the entry for text, creating it on first use. Asking for
// an existing word with a different mode is an authoring error.
func (v *Vocabulary) Word(text string, mode MatchMode) (*Entry, error) {
	key := strings.ToLower(text)
	if e, ok := v.byText[key]; ok {
		if e.mode != mode {
			return nil, fmt.Errorf("word %q: %w", key, ErrModeConflict)
		}
		return e, nil
	}
	e := NewEntry(key, mode)
	v.Add(e)
	return e, nil
}

// Add registers entries as they are, in order. Entries are distinct by
// identity, so one with the same text as an existing entry is still
// added; Lookup and Word keep returning the first entry with that text.
func (v *Vocabulary) Add(entries ...*Entry) {
	for _, e := range entries {
		if e == nil {
			continue
		}
		if _, ok := v.byText[e.text]; !ok {
			v.byText[e.text] = e
		}
		v.entries = append(v.entries, e)
	}
}

// Lookup returns the first entry registered under text, if any.
func (v *Vocabulary) Lookup(text string) (*Entry, bool) {
	e, ok := v.byText[strings.ToLower(text)]
	return e, ok
}

// Entries returns all entries in registration order.
func (v *Vocabulary) Entries() []*Entry {
	return append([]*Entry(nil), v.entries...)
}

// Len returns the number of registered entries.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Resolve resolves token against every registered entry.
func (v *Vocabulary) Resolve(token string) Result {
	return Resolve(token, v.entries)
}
