package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/twoword/engine/rules"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "twoword.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, cfg.Validate())

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, rules.HighestPriority, p)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
story: cloak
width: 60
prompt: "> "
match_policy: first-eligible
log:
  level: debug
  file: /tmp/twoword.log
`)
	t.Setenv("TWOWORD_WIDTH", "40")
	t.Setenv("TWOWORD_LOG_LEVEL", "warn")
	t.Setenv("TWOWORD_PLAIN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Config{
		Story:       "cloak",
		Width:       40,
		Prompt:      "> ",
		MatchPolicy: "first-eligible",
		Plain:       true,
		Log:         Log{Level: "warn", File: "/tmp/twoword.log"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, cfg.Validate())
	p, _ := cfg.Policy()
	assert.Equal(t, rules.FirstEligible, p)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }, "read config"},
		{"unknown key", func(t *testing.T) string { return writeFile(t, "colour: red\n") }, "field colour not found"},
		{"bad type", func(t *testing.T) string { return writeFile(t, "width: wide\n") }, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("TWOWORD_WIDTH", "wide")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Width = 0
	cfg.MatchPolicy = "random"
	cfg.Log.Level = "loud"
	cfg.Story = " "

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"width must be positive, got 0",
		`unknown match policy "random"`,
		"log level",
		"no story selected",
	} {
		assert.Contains(t, err.Error(), want)
	}

	cfg = Default()
	cfg.Story = ""
	cfg.StoryDir = "stories/mine"
	assert.NoError(t, cfg.Validate(), "a story directory is enough")
}
