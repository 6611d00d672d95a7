// Package story is the authoring layer: it builds vocabulary, rules,
// messages, world, and event handlers into an engine session, and keeps
// the registry of stories the program can start.
package story

import (
	"fmt"
	"strings"

	"github.com/nathoo/twoword/engine"
	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/rules"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
)

// BuildError collects every problem found while building a story.
type BuildError struct {
	Problems []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("story build failed with %d problem(s):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// Builder populates an engine session. Mistakes are collected rather
// than returned one by one; Build reports them all.
type Builder struct {
	eng      *engine.Engine
	terms    map[string]*vocab.Term
	rooms    map[string]*world.Room
	objects  map[string]*world.Object
	cache    map[string]message.Message
	rules    []*rules.Rule
	cleanup  []func()
	problems []string
}

// NewBuilder creates a builder for e.
func NewBuilder(e *engine.Engine) *Builder {
	return &Builder{
		eng:     e,
		terms:   map[string]*vocab.Term{},
		rooms:   map[string]*world.Room{},
		objects: map[string]*world.Object{},
		cache:   map[string]message.Message{},
	}
}

// Engine returns the session being built. Rule effects and handlers
// capture it to print, queue events, and end the game.
func (b *Builder) Engine() *engine.Engine { return b.eng }

func (b *Builder) problemf(format string, args ...any) {
	b.problems = append(b.problems, fmt.Sprintf(format, args...))
}

// Word returns the vocabulary entry for text, creating it on first use.
// Abbreviations are added to the entry.
func (b *Builder) Word(text string, mode vocab.MatchMode, abbrevs ...string) *vocab.Entry {
	w, err := b.eng.Vocab.Word(text, mode)
	if err != nil {
		b.problemf("%v", err)
		w, _ = b.eng.Vocab.Lookup(text)
	}
	for _, a := range abbrevs {
		w.AddAbbreviation(a)
	}
	return w
}

// Term returns the term called name, creating it on first use, and adds
// the given words to it as prefix-matched entries.
func (b *Builder) Term(name string, words ...string) *vocab.Term {
	t, ok := b.terms[name]
	if !ok {
		t = vocab.NewTerm(name)
		b.terms[name] = t
	}
	b.AddWords(t, vocab.Prefix, words...)
	return t
}

// LookupTerm returns a term created earlier.
func (b *Builder) LookupTerm(name string) (*vocab.Term, bool) {
	t, ok := b.terms[name]
	return t, ok
}

// AddWords adds words with the given match mode to t.
func (b *Builder) AddWords(t *vocab.Term, mode vocab.MatchMode, words ...string) {
	for _, text := range words {
		t.Add(b.Word(text, mode))
	}
}

// NoiseTerm adds words to the session's noise words.
func (b *Builder) NoiseTerm(words ...string) *vocab.Term {
	b.AddWords(b.eng.Noise, vocab.Prefix, words...)
	return b.eng.Noise
}

// Rule adds a rule. Rules are tried in the order they are added. term2
// may be nil for a one-word command and valid may be nil for a rule that
// always applies.
func (b *Builder) Rule(term1, term2 *vocab.Term, priority int, valid rules.ValidFunc, effect rules.EffectFunc) *rules.Rule {
	r := &rules.Rule{Term1: term1, Term2: term2, Priority: priority, Valid: valid, Effect: effect}
	b.rules = append(b.rules, r)
	b.eng.Rules.Add(r)
	return r
}

// Room creates a room and registers it with the world.
func (b *Builder) Room(name string, desc, brief message.Message) *world.Room {
	if _, dup := b.rooms[name]; dup {
		b.problemf("room %q defined twice", name)
	}
	r := world.NewRoom(name, desc, brief)
	b.rooms[name] = r
	b.eng.World.AddRoom(r)
	return r
}

// LookupRoom returns a room created earlier.
func (b *Builder) LookupRoom(name string) (*world.Room, bool) {
	r, ok := b.rooms[name]
	return r, ok
}

// Path adds an exit from one room to another, taken by any word of t.
func (b *Builder) Path(t *vocab.Term, from, to *world.Room) {
	if t == nil || from == nil || to == nil {
		b.problemf("path: term and both rooms are required")
		return
	}
	from.AddPath(t, to)
}

// Object creates an object and registers it with the world.
func (b *Builder) Object(name string, t *vocab.Term, inventory, hereIs, long message.Message) *world.Object {
	if _, dup := b.objects[name]; dup {
		b.problemf("object %q defined twice", name)
	}
	if t == nil {
		b.problemf("object %q has no vocabulary term", name)
		t = vocab.NewTerm(name)
	}
	o := world.NewObject(name, t, inventory, hereIs, long)
	b.objects[name] = o
	b.eng.World.AddObject(o)
	return o
}

// LookupObject returns an object created earlier.
func (b *Builder) LookupObject(name string) (*world.Object, bool) {
	o, ok := b.objects[name]
	return o, ok
}

// Player creates the player.
func (b *Builder) Player(name string) *world.Player {
	p := world.NewPlayer(name)
	b.eng.World.Player = p
	return p
}

// Msg returns a literal message. Repeated texts share one node.
func (b *Builder) Msg(text string) message.Message {
	if m, ok := b.cache[text]; ok {
		return m
	}
	m := message.Literal(text)
	b.cache[text] = m
	return m
}

// Template compiles text with %1..%9 argument markers and %% escapes. A
// malformed template is recorded as a problem and renders as its raw text.
func (b *Builder) Template(text string) message.Message {
	key := "\x00" + text
	if m, ok := b.cache[key]; ok {
		return m
	}
	m, err := message.Parse(text)
	if err != nil {
		b.problemf("%v", err)
		m = message.Literal(text)
	}
	b.cache[key] = m
	return m
}

// Concat joins messages.
func (b *Builder) Concat(parts ...message.Message) message.Message {
	return message.Concat(parts)
}

// Select chooses among messages by alternative index.
func (b *Builder) Select(alts ...message.Message) message.Message {
	return message.Select(alts)
}

// Cycle rotates through messages. Every call creates a new counter.
func (b *Builder) Cycle(alts ...message.Message) message.Message {
	return message.NewCycle(alts...)
}

// Special sets one of the special messages.
func (b *Builder) Special(name string, m message.Message) {
	if _, ok := engine.SpecialArity[name]; !ok {
		b.problemf("unknown special message %q", name)
		return
	}
	b.eng.Specials[name] = m
}

// Prompt sets the input prompt.
func (b *Builder) Prompt(p string) { b.eng.Prompt = p }

// EventType returns the interned event type called name.
func (b *Builder) EventType(name string) *events.Type { return events.TypeOf(name) }

// On subscribes fn to events named event. The returned handler can be
// removed and re-added during play.
func (b *Builder) On(event, name string, fn events.HandlerFunc) *events.Handler {
	h := b.Handler(event, name, fn)
	b.eng.Events.AddHandler(h)
	return h
}

// Handler creates a handler without subscribing it.
func (b *Builder) Handler(event, name string, fn events.HandlerFunc) *events.Handler {
	h := events.NewHandler(events.TypeOf(event), fn)
	h.Name = name
	return h
}

// Cleanup registers fn to run when the session is released.
func (b *Builder) Cleanup(fn func()) { b.cleanup = append(b.cleanup, fn) }

// Build checks the story for authoring mistakes: problems recorded while
// building, missing or wrongly sized special messages, and rules whose
// terms have no words.
func (b *Builder) Build() error {
	problems := append([]string(nil), b.problems...)

	for _, name := range engine.SpecialNames() {
		m := b.eng.Specials[name]
		if m == nil {
			problems = append(problems, fmt.Sprintf("special message %q is not defined", name))
			continue
		}
		if got, want := message.Arity(m), engine.SpecialArity[name]; got > want {
			problems = append(problems, fmt.Sprintf(
				"special message %q uses %%%d but is given %d argument(s)", name, got, want))
		}
	}

	for i, r := range b.rules {
		switch {
		case r.Term1 == nil:
			problems = append(problems, fmt.Sprintf("rule %d has no first term", i+1))
		case r.Term1.Len() == 0:
			problems = append(problems, fmt.Sprintf("rule %d: term %q has no words", i+1, r.Term1.Name()))
		}
		if r.Term2 != nil && r.Term2.Len() == 0 {
			problems = append(problems, fmt.Sprintf("rule %d: term %q has no words", i+1, r.Term2.Name()))
		}
		if r.Effect == nil {
			problems = append(problems, fmt.Sprintf("rule %d (%s) has no effect", i+1, r))
		}
	}

	if len(problems) > 0 {
		return &BuildError{Problems: problems}
	}
	return nil
}

func (b *Builder) release() {
	for i := len(b.cleanup) - 1; i >= 0; i-- {
		b.cleanup[i]()
	}
	b.cleanup = nil
}
