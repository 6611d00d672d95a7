package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/twoword/engine"
	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/output"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/story"
)

const opening = "Welcome to your adventure. Have a good game.\n" +
	"\n" +
	"You are on a balcony facing west, overlooking a beautiful garden. The\n" +
	"only exit from the balcony is behind you.\n"

func newTestCLI(t *testing.T, fn story.Func, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	eng := engine.New(output.New(&out, output.DefaultWidth))
	release, err := story.Install(eng, fn)
	require.NoError(t, err)
	t.Cleanup(release)

	c := New(eng)
	c.In = strings.NewReader(input)
	return c, &out
}

// wave is a one-rule story with a command.exec handler.
func wave(b *story.Builder) error {
	b.Special(engine.WordUnknown, b.Template("What is %1?"))
	b.Special(engine.WordAmbiguous, b.Template("Which %1?"))
	b.Special(engine.CommandTooLong, b.Msg("Too long."))
	b.Special(engine.CommandAllNoise, b.Msg("Noise."))
	b.Special(engine.CommandUnknownOne, b.Template("Can't %1."))
	b.Special(engine.CommandUnknownTwo, b.Template("Can't %1 %2."))
	b.Prompt("> ")

	out := b.Engine().Out
	b.Rule(b.Term("wave", "wave"), nil, 0, nil, func(_, _ *vocab.Entry) error {
		return message.Println(b.Msg("You wave."), out)
	})
	b.Rule(b.Term("fail", "fail"), nil, 0, nil, func(_, _ *vocab.Entry) error {
		return errors.New("broken rule")
	})
	b.On(events.CommandExec, "echo", func(*events.Event) error { return nil })
	return nil
}

func TestCLI_Script(t *testing.T) {
	c, out := newTestCLI(t, story.Demo, "# a comment\ndance\n  # indented comment\n/quit\ndance\n")
	c.EchoInput = true
	require.NoError(t, c.Run())

	want := opening +
		"? dance\n" +
		"I don't understand dance.\n" +
		"? /quit\n" +
		"[Goodbye.]\n" +
		"\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestCLI_NoEcho(t *testing.T) {
	c, out := newTestCLI(t, story.Demo, "dance\n")
	require.NoError(t, c.Run())
	assert.Equal(t, opening+"? I don't understand dance.\n? \n", out.String())
	assert.Equal(t, engine.Terminated, c.Engine.State(), "end of input closes the session")
}

func TestCLI_StoryExit(t *testing.T) {
	c, out := newTestCLI(t, story.Demo, "quit\ndance\n")
	require.NoError(t, c.Run())
	got := out.String()
	assert.True(t, strings.HasSuffix(got, "? Hope you enjoyed your game. Come back and play again.\n\n"), got)
	assert.NotContains(t, got, "dance")
	assert.Equal(t, engine.Terminated, c.Engine.State())
}

func TestCLI_MetaCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unknown", "/frob\n", []string{"[Unknown command: /frob. Type /help for available commands.]"}},
		{"help", "/help\n", []string{"/again  repeat the last command", "/quit   leave the story"}},
		{"state", "/state\n", []string{"[Turn: 0]", "[State: awaiting input]", "[Location: balcony]", "[Carrying: nothing]"}},
		{"nothing to repeat", "/again\n", []string{"[Nothing to repeat.]"}},
		{"trace toggles", "/trace\n/trace\n", []string{"[Trace output enabled.]", "[Trace output disabled.]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(t, story.Demo, tt.input)
			require.NoError(t, c.Run())
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestCLI_Again(t *testing.T) {
	c, out := newTestCLI(t, story.Demo, "dance\n/again\n")
	require.NoError(t, c.Run())
	assert.Equal(t, 2, strings.Count(out.String(), "I don't understand dance."))
	assert.Equal(t, 2, c.Engine.Turns())
}

func TestCLI_Trace(t *testing.T) {
	c, out := newTestCLI(t, wave, "wave\n/trace\nwave\n")
	require.NoError(t, c.Run())
	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "[trace: command.exec -> echo]"), got)
	assert.Equal(t, 2, strings.Count(got, "You wave."))
}

func TestCLI_StepError(t *testing.T) {
	c, _ := newTestCLI(t, wave, "fail\nwave\n")
	err := c.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step "fail"`)
	assert.Contains(t, err.Error(), "broken rule")
}

func TestCLI_MissingSpecial(t *testing.T) {
	var out bytes.Buffer
	eng := engine.New(output.New(&out, output.DefaultWidth))
	c := New(eng)
	c.In = strings.NewReader("wave\n")
	err := c.Run()
	assert.ErrorIs(t, err, engine.ErrMissingSpecial)
}

func TestStateLines_NoPlayer(t *testing.T) {
	var out bytes.Buffer
	eng := engine.New(output.New(&out, output.DefaultWidth))
	assert.Equal(t, []string{"Turn: 0", "State: awaiting input"}, StateLines(eng))
}
