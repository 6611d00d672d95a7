package story

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/twoword/engine"
	"github.com/nathoo/twoword/engine/output"
)

type session struct {
	e   *engine.Engine
	out *bytes.Buffer
}

func startDemo(t *testing.T) *session {
	t.Helper()
	var buf bytes.Buffer
	e := engine.New(output.New(&buf, output.DefaultWidth))
	release, err := Install(e, Demo)
	require.NoError(t, err)
	t.Cleanup(release)
	require.NoError(t, e.Start())
	return &session{e: e, out: &buf}
}

func (s *session) step(t *testing.T, line string) string {
	t.Helper()
	s.out.Reset()
	require.NoError(t, s.e.Step(line))
	return s.out.String()
}

// flat joins wrapped output back into single-spaced text.
func flat(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestDemo_Opening(t *testing.T) {
	s := startDemo(t)
	want := "Welcome to your adventure. Have a good game.\n" +
		"\n" +
		"You are on a balcony facing west, overlooking a beautiful garden. The\n" +
		"only exit from the balcony is behind you.\n"
	if diff := cmp.Diff(want, s.out.String()); diff != "" {
		t.Errorf("opening mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "? ", s.e.Prompt)
}

func TestDemo_PlayerErrors(t *testing.T) {
	s := startDemo(t)
	tests := []struct {
		line string
		want string
	}{
		{"dance", "I don't understand dance.\n"},
		{"wa", "I have more than one way to interpret wa.\n"},
		{"the", "That was noise to me.\n"},
		{"the a", "Did you want me to do something?\n"},
		{"get coin key", "I only understand one and two word commands.\n"},
		{"get coin key", "You have to keep it brief.\n"},
		{"xyzzy", "I don't know how to \"xyzzy\".\n"},
		{"around", "I don't understand \"around\".\n"},
		{"xyzzy north", "I don't know how to \"xyzzy north\".\n"},
		{"xyzzy north", "I don't understand \"xyzzy north\".\n"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, s.step(t, tt.line)); diff != "" {
			t.Errorf("Step(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestDemo_Kill(t *testing.T) {
	s := startDemo(t)
	assert.Equal(t, "What exactly is it you want me to kill?\n", s.step(t, "kill"))
	assert.Equal(t, "Why do you persist in asking that?\n", s.step(t, "execute"))
	assert.Equal(t, "I don't know what you want me to kill?\n", s.step(t, "kill"))
	assert.Equal(t, "How exactly do you propose that I kill the wall?\n", s.step(t, "kill the wall"))
	assert.Equal(t, "Are you so unhappy with the gold that you want me to execute it?\n", s.step(t, "execute gold"))
}

func TestDemo_Walkthrough(t *testing.T) {
	s := startDemo(t)

	out := s.step(t, "g e")
	assert.Contains(t, flat(out), "You are in the north end of the Big Room.")
	assert.Contains(t, flat(out), "There is a gold coin here.")

	assert.Equal(t, "You are now carrying a gold coin.\n", s.step(t, "get coin"))
	assert.Equal(t, "You are already carrying a gold coin.\n", s.step(t, "get the goldcoin"))
	assert.Equal(t, "You are carrying a gold coin.\n", s.step(t, "inventory"))

	out = s.step(t, "go s")
	assert.Contains(t, flat(out), "south end of the Big Room")
	assert.Contains(t, flat(out), "There is a door in the east wall. It is closed.")

	assert.Equal(t, "You can't go east. The door is locked.\n", s.step(t, "go east"))
	assert.Equal(t, "You need a key to unlock the door.\n", s.step(t, "unlock door"))
	assert.Equal(t, "You don't have a wand.\n", s.step(t, "wave wand"))

	assert.Contains(t, flat(s.step(t, "xyzzy")), "magic workshop")
	assert.Equal(t, "You are now carrying a wooden wand.\n", s.step(t, "get wand"))
	assert.Contains(t, flat(s.step(t, "xyzzy")), "south end of the Big Room")

	// Holding the wand in the south room makes the most specific rule win.
	assert.Equal(t, "A key appears on the floor.\n", s.step(t, "wave wand"))
	assert.Equal(t, "The key on the floor disappears.\n", s.step(t, "wave wand"))
	assert.Equal(t, "A key appears on the floor.\n", s.step(t, "wave wand"))
	assert.Equal(t, "You need the key to lock the door.\n", s.step(t, "lock door"))
	assert.Equal(t, "You are now carrying a key.\n", s.step(t, "get key"))
	assert.Equal(t, "Nothing happens.\n", s.step(t, "wave wand"))

	assert.Equal(t, "The door is already locked.\n", s.step(t, "lock door"))
	assert.Equal(t, "The door is now unlocked.\n", s.step(t, "unlock"))
	assert.Contains(t, flat(s.step(t, "look")), "There is an open door in the east wall.")

	out = s.step(t, "go east")
	assert.Contains(t, flat(out), "You have entered the ballroom.")
	assert.Contains(t, flat(out), "There is an open door in the west wall.")
	assert.Contains(t, flat(out), "There is a piece of paper here.")
	assert.Equal(t, "It is a fine oaken door that is standing open.\n", s.step(t, "examine door"))

	assert.Equal(t, "You don't have a paper to read.\n", s.step(t, "read paper"))
	assert.Equal(t, "You are now carrying a piece of paper.\n", s.step(t, "get paper"))
	assert.Equal(t, "The message says, \"Enjoy your game.\"\n", s.step(t, "read message"))
	assert.Equal(t, "You are carrying a gold coin, a wooden wand, a key, and a piece of paper.",
		flat(s.step(t, "inventory")))

	assert.Equal(t, "You have dropped a gold coin.\n", s.step(t, "drop coin"))
	assert.Equal(t, "You are not carrying coin.\n", s.step(t, "drop coin"))
	assert.Equal(t, "The door is now locked.\n", s.step(t, "lock door"))
	assert.Equal(t, "You can't go west. The door is locked.\n", s.step(t, "go w"))
	assert.Equal(t, "I don't know how to go north from here.\n", s.step(t, "go north"))

	assert.Equal(t, "Hope you enjoyed your game. Come back and play again.\n", s.step(t, "ex"))
	assert.True(t, s.e.Exited())
	assert.Equal(t, engine.Terminated, s.e.State())
}

func TestDemo_Run(t *testing.T) {
	var buf bytes.Buffer
	e := engine.New(output.New(&buf, 40))
	release, err := Install(e, Demo)
	require.NoError(t, err)
	defer release()

	require.NoError(t, e.Run(strings.NewReader("look around\nquit\nlook\n")))
	got := buf.String()
	assert.Equal(t, 2, strings.Count(flat(got), "only exit from the balcony"), "opening and look around")
	assert.True(t, strings.HasSuffix(got, "? Hope you enjoyed your game. Come back\nand play again.\n\n"), got)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 40, line)
	}
}
