package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStoriesCommand(t *testing.T) {
	out, _, err := execute(t, "", "stories")
	require.NoError(t, err)
	assert.Equal(t, "cloak\ndemo\n", out)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit none, built unknown)")
}

func TestPlay_Stdin(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "twoword.log")
	out, _, err := execute(t, "dance\nquit\n", "--story", "demo", "--log-file", logFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Welcome to your adventure."), out)
	assert.Contains(t, out, "? I don't understand dance.\n")
	assert.True(t, strings.HasSuffix(out, "? Hope you enjoyed your game. Come back and play again.\n\n"), out)

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), `"msg":"session started"`)
	assert.Contains(t, string(logs), `"story":"demo"`)
	assert.Contains(t, string(logs), `"session":"`)
	assert.Contains(t, string(logs), `"turns":2`)
}

func TestPlay_Script(t *testing.T) {
	script := writeTemp(t, "walk.txt", "# open the cloak story\ninventory\n/quit\n")
	out, _, err := execute(t, "", "--story", "cloak", "--script", script, "--width", "50",
		"--log-file", filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "The Cloak of Darkness\n"), out)
	assert.Contains(t, out, "> inventory\nYou are carrying a velvet cloak (worn).\n")
	assert.Contains(t, out, "> /quit\n[Goodbye.]\n")
	assert.NotContains(t, out, "# open")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 50, line)
	}
}

func TestPlay_StoryDirAndPrompt(t *testing.T) {
	out, _, err := execute(t, "look\n", "--story-dir", "../../loader/testdata/minimal", "--prompt", ">> ",
		"--log-file", filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome.\nYou are in a hall. There is a lamp here.\n"+
		">> You are in a hall. There is a lamp here.\n>> \n", out)
}

func TestPlay_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown story", []string{"--story", "nosuch"}, "unknown story"},
		{"bad width", []string{"--width", "0"}, "width must be positive"},
		{"bad policy", []string{"--match-policy", "random"}, "unknown match policy"},
		{"bad story dir", []string{"--story-dir", "../../loader/testdata/invalid"}, "loading story invalid"},
		{"missing script", []string{"--script", "/nonexistent/script.txt"}, "opening script"},
		{"extra args", []string{"demo"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--log-file", filepath.Join(t.TempDir(), "log"))
			_, errOut, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, errOut, "Error:")
		})
	}
}

func TestPlay_FatalErrorIsLogged(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "twoword.log")
	_, _, err := execute(t, "sandbox\nfizzle\nsandbox\n", "--story-dir", "../../loader/testdata/runtime",
		"--log-file", logFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step "fizzle"`)

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	var failed map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(logs)), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		if rec["msg"] == "session failed" {
			failed = rec
		}
	}
	require.NotNil(t, failed, string(logs))
	assert.Equal(t, "error", failed["level"])
	assert.Equal(t, "runtime", failed["story"])
	assert.NotEmpty(t, failed["session"])
	assert.EqualValues(t, 2, failed["turn"])
	assert.Contains(t, failed["error"], `step "fizzle"`)
	assert.Contains(t, failed["error"], "validity check")
}

func TestResolveConfig_Precedence(t *testing.T) {
	cfgFile := writeTemp(t, "twoword.yaml", "story: cloak\nwidth: 60\nmatch_policy: first-eligible\n")
	t.Setenv("TWOWORD_WIDTH", "55")
	t.Setenv("TWOWORD_PROMPT", "$ ")

	cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile, "--width", "40", "-v"}))
	fv := flagValues{configPath: cfgFile, verbose: true}
	fv.cfg.Width = 40

	cfg, err := resolveConfig(cmd, fv)
	require.NoError(t, err)
	assert.Equal(t, "cloak", cfg.Story, "from the file")
	assert.Equal(t, "first-eligible", cfg.MatchPolicy, "from the file")
	assert.Equal(t, "$ ", cfg.Prompt, "from the environment")
	assert.Equal(t, 40, cfg.Width, "flag beats environment and file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Plain, "unset flags do not override")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
