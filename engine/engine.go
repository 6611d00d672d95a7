// Package engine provides the command interpreter that turns one line of
// player input into a resolved command, runs the matching rule, and
// drains the events it caused.
package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/output"
	"github.com/nathoo/twoword/engine/rules"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
	"github.com/nathoo/twoword/types"
)

// Names of the special messages every story must define, and the number
// of arguments each is rendered with.
const (
	WordUnknown       = "word.unknown"        // token
	WordAmbiguous     = "word.ambiguous"      // token
	CommandTooLong    = "command.toolong"     // none
	CommandAllNoise   = "command.allnoise"    // none
	CommandUnknownOne = "command.unknown.one" // word1
	CommandUnknownTwo = "command.unknown.two" // word1, word2
)

// SpecialArity maps each special message to its argument count.
var SpecialArity = map[string]int{
	WordUnknown:       1,
	WordAmbiguous:     1,
	CommandTooLong:    0,
	CommandAllNoise:   0,
	CommandUnknownOne: 1,
	CommandUnknownTwo: 2,
}

// SpecialNames returns the special message names in sorted order.
func SpecialNames() []string {
	names := make([]string, 0, len(SpecialArity))
	for name := range SpecialArity {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is where the interpreter is in processing a line.
type State int

const (
	AwaitingInput State = iota
	Tokenizing
	Resolving
	Matching
	Executing
	EventDraining
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting input"
	case Tokenizing:
		return "tokenizing"
	case Resolving:
		return "resolving"
	case Matching:
		return "matching"
	case Executing:
		return "executing"
	case EventDraining:
		return "draining events"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrMissingSpecial is returned by Start when a story left a special
// message undefined.
var ErrMissingSpecial = errors.New("special message not defined")

// Engine is one interpreter session. Stories populate the exported
// fields before Start; rule effects and event handlers use them during
// play. It is not safe for concurrent use.
type Engine struct {
	Vocab    *vocab.Vocabulary
	Noise    *vocab.Term
	Rules    *rules.Matcher
	Events   *events.Dispatcher
	World    *world.World
	Out      *output.Formatter
	Specials map[string]message.Message
	Prompt   string

	log   *zap.Logger
	exit  bool
	state State
	turns int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPolicy sets the rule selection policy.
func WithPolicy(p rules.Policy) Option {
	return func(e *Engine) { e.Rules.Policy = p }
}

// New creates an empty session writing to out.
func New(out *output.Formatter, opts ...Option) *Engine {
	e := &Engine{
		Vocab:    vocab.New(),
		Noise:    vocab.NewTerm("noise"),
		Rules:    rules.NewMatcher(rules.HighestPriority),
		Events:   events.NewDispatcher(),
		World:    world.New(),
		Out:      out,
		Specials: map[string]message.Message{},
		Prompt:   "? ",
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Events.OnDispatch = func(ev *events.Event, h *events.Handler) {
		e.log.Debug("dispatch", zap.String("event", ev.Type().Name()), zap.String("handler", h.Name))
	}
	return e
}

// Logger returns the session logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// State returns the interpreter state.
func (e *Engine) State() State { return e.state }

// Turns returns the number of non-empty lines processed.
func (e *Engine) Turns() int { return e.turns }

// SetExit sets the exit flag and returns its previous value.
func (e *Engine) SetExit(exit bool) bool {
	old := e.exit
	e.exit = exit
	return old
}

// Exited reports whether the exit flag is set.
func (e *Engine) Exited() bool { return e.exit }

// Enqueue queues ev for the next drain.
func (e *Engine) Enqueue(ev *events.Event) { e.Events.Enqueue(ev) }

// Start checks the special messages, then raises game.init and drains it.
func (e *Engine) Start() error {
	for _, name := range SpecialNames() {
		if e.Specials[name] == nil {
			return fmt.Errorf("%s: %w", name, ErrMissingSpecial)
		}
	}
	e.Events.Enqueue(events.New(events.TypeOf(events.GameInit)))
	if err := e.drain(); err != nil {
		return err
	}
	return e.finishStep()
}

// ShowPrompt ends any partial line and writes the prompt.
func (e *Engine) ShowPrompt() {
	e.Out.StartLine()
	e.Out.Prompt(e.Prompt)
}

// Step processes one line of input. Player mistakes are answered with
// special messages and return nil; a non-nil error means the session is
// broken and must not continue.
func (e *Engine) Step(line string) error {
	if e.state == Terminated {
		return nil
	}

	// 1. Tokenize.
	e.state = Tokenizing
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		e.state = AwaitingInput
		return nil
	}
	e.turns++

	// 2. Resolve every token, dropping noise words.
	e.state = Resolving
	var words []*vocab.Entry
	for _, tok := range tokens {
		res := e.Vocab.Resolve(tok)
		switch res.Outcome {
		case vocab.Unknown:
			return e.special(WordUnknown, tok)
		case vocab.Ambiguous:
			return e.special(WordAmbiguous, tok)
		}
		e.log.Debug("resolved", zap.String("token", tok), zap.Stringer("word", res.Entry))
		if e.Noise.Contains(res.Entry) {
			continue
		}
		words = append(words, res.Entry)
	}
	switch {
	case len(words) == 0:
		return e.special(CommandAllNoise)
	case len(words) > 2:
		return e.special(CommandTooLong)
	}

	// 3. Match.
	e.state = Matching
	w1 := words[0]
	var w2 *vocab.Entry
	if len(words) == 2 {
		w2 = words[1]
	}
	rule, err := e.Rules.Match(w1, w2)
	if err != nil {
		e.state = Terminated
		return err
	}
	if rule == nil {
		if w2 == nil {
			return e.special(CommandUnknownOne, w1.Text())
		}
		return e.special(CommandUnknownTwo, w1.Text(), w2.Text())
	}
	e.log.Debug("matched", zap.Stringer("rule", rule))

	// 4. Execute.
	e.state = Executing
	if err := rule.Apply(w1, w2); err != nil {
		e.state = Terminated
		return fmt.Errorf("rule %s: %w", rule, err)
	}

	// 5. Announce the command and drain.
	ev := events.New(events.TypeOf(events.CommandExec))
	_ = ev.Props.Set("word1", types.RefVal(w1))
	if w2 != nil {
		_ = ev.Props.Set("word2", types.RefVal(w2))
	}
	e.Events.Enqueue(ev)
	if err := e.drain(); err != nil {
		return err
	}
	return e.finishStep()
}

// Run starts the session and reads commands from r until the exit flag
// is set or input ends. The final newline is written either way.
func (e *Engine) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
	if err := e.Loop(next, nil); err != nil {
		return err
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// LineFunc supplies the next input line; ok is false at end of input.
type LineFunc func() (line string, ok bool)

// CommandFunc handles one input line in place of Step. Returning quit
// ends the loop.
type CommandFunc func(line string) (quit bool, err error)

// Loop starts the session, then prompts and handles lines from next until
// the exit flag is set, handle asks to quit, or input ends. A nil handle
// passes every line to Step. A fatal error ends the loop at once.
func (e *Engine) Loop(next LineFunc, handle CommandFunc) error {
	if handle == nil {
		handle = func(line string) (bool, error) { return false, e.Step(line) }
	}
	if err := e.Start(); err != nil {
		return err
	}
	for !e.exit {
		e.ShowPrompt()
		line, ok := next()
		if !ok {
			break
		}
		quit, err := handle(line)
		if err != nil {
			e.state = Terminated
			return err
		}
		if quit {
			break
		}
	}
	e.Out.Newline()
	e.state = Terminated
	if err := e.Out.Err(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (e *Engine) drain() error {
	e.state = EventDraining
	if err := e.Events.Drain(); err != nil {
		e.state = Terminated
		return fmt.Errorf("drain events: %w", err)
	}
	return nil
}

// special renders a player-error message as a complete line.
func (e *Engine) special(name string, args ...any) error {
	m := e.Specials[name]
	if m == nil {
		e.state = Terminated
		return fmt.Errorf("%s: %w", name, ErrMissingSpecial)
	}
	if err := message.Println(m, e.Out, args...); err != nil {
		e.state = Terminated
		return fmt.Errorf("render %s: %w", name, err)
	}
	return e.finishStep()
}

func (e *Engine) finishStep() error {
	if err := e.Out.Err(); err != nil {
		e.state = Terminated
		return fmt.Errorf("write output: %w", err)
	}
	if e.exit {
		e.state = Terminated
		return nil
	}
	e.state = AwaitingInput
	return nil
}
