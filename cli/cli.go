// Package cli runs a story in line mode: prompt, read a line, step the
// engine. It adds script playback and a few slash meta-commands on top of
// the engine's own loop.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/twoword/engine"
	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/world"
)

// CLI handles line-mode interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	lastCmd   string
}

// New creates a CLI reading from stdin. Output goes to the engine's
// formatter.
func New(eng *engine.Engine) *CLI {
	c := &CLI{Engine: eng, In: os.Stdin}

	prev := eng.Events.OnDispatch
	eng.Events.OnDispatch = func(ev *events.Event, h *events.Handler) {
		if prev != nil {
			prev(ev, h)
		}
		if c.Trace {
			c.printSystem(fmt.Sprintf("trace: %s -> %s", ev.Type(), h.Name))
		}
	}
	return c
}

// Run starts the session and loops: prompt, input, dispatch. It returns
// when the story sets the exit flag, /quit is entered, or input ends.
func (c *CLI) Run() error {
	scanner := bufio.NewScanner(c.In)
	next := func() (string, bool) { return c.next(scanner) }
	if err := c.Engine.Loop(next, c.handle); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// next returns the next input line, skipping comment lines.
func (c *CLI) next(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		return line, true
	}
	return "", false
}

// handle echoes the line if asked, then runs it as a meta-command or a
// story command.
func (c *CLI) handle(input string) (bool, error) {
	if c.EchoInput {
		c.Engine.Out.Println(input)
	}

	// Meta-commands start with '/'.
	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}

	if strings.TrimSpace(input) != "" {
		c.lastCmd = input
	}
	return false, c.step(input)
}

func (c *CLI) step(input string) error {
	if err := c.Engine.Step(input); err != nil {
		return fmt.Errorf("step %q: %w", input, err)
	}
	return nil
}

// handleMeta dispatches meta-commands. It reports whether the session
// should end.
func (c *CLI) handleMeta(input string) (bool, error) {
	parts := strings.Fields(input)
	switch parts[0] {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true, nil

	case "/again":
		if c.lastCmd == "" {
			c.printSystem("Nothing to repeat.")
			return false, nil
		}
		return false, c.step(c.lastCmd)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", parts[0]))
	}
	return false, nil
}

func (c *CLI) cmdHelp() {
	help := []string{
		"/again  repeat the last command",
		"/state  show turn, location and inventory",
		"/trace  toggle event trace output",
		"/help   show this help",
		"/quit   leave the story",
		"",
		"Everything else is a one or two word command for the story.",
	}
	for _, line := range help {
		c.Engine.Out.Println(line)
	}
}

func (c *CLI) cmdState() {
	for _, line := range StateLines(c.Engine) {
		c.printSystem(line)
	}
}

// StateLines describes the session for the /state command.
func StateLines(e *engine.Engine) []string {
	lines := []string{
		fmt.Sprintf("Turn: %d", e.Turns()),
		fmt.Sprintf("State: %s", e.State()),
	}
	p := e.World.Player
	if p == nil {
		return lines
	}
	where := "nowhere"
	if r := p.Location(); r != nil {
		where = r.Name
	}
	lines = append(lines,
		fmt.Sprintf("Location: %s", where),
		fmt.Sprintf("Carrying: %s", names(p.Contents())))
	return lines
}

func names(objs []*world.Object) string {
	if len(objs) == 0 {
		return "nothing"
	}
	s := make([]string, len(objs))
	for i, o := range objs {
		s[i] = o.Name
	}
	return strings.Join(s, ", ")
}

func (c *CLI) printSystem(text string) {
	c.Engine.Out.StartLine()
	c.Engine.Out.Println("[" + text + "]")
}
