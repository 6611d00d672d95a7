// Command twoword plays two-word interactive fiction.
//
//	twoword [--story name | --story-dir dir] [--plain] [--script file] [--config file]
//	twoword stories
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/twoword/cli"
	"github.com/nathoo/twoword/config"
	"github.com/nathoo/twoword/engine"
	"github.com/nathoo/twoword/engine/output"
	"github.com/nathoo/twoword/loader"
	"github.com/nathoo/twoword/story"
	"github.com/nathoo/twoword/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// flagValues holds what was given on the command line. Only flags the user
// actually set override the config file and environment.
type flagValues struct {
	configPath string
	script     string
	verbose    bool
	cfg        config.Config
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "twoword",
		Short: "Play two-word interactive fiction",
		Long: `twoword runs stories that understand one and two word commands,
such as "go north" or "get lamp".

Stories are built in (see "twoword stories") or loaded from a directory of
Lua files with --story-dir. Settings come from defaults, then the --config
YAML file, then TWOWORD_* environment variables, then flags.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, fv)
			if err != nil {
				return err
			}
			return play(cfg, fv.script, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&fv.configPath, "config", "", "YAML config file")
	f.StringVar(&fv.cfg.Story, "story", "", "built-in story to play")
	f.StringVar(&fv.cfg.StoryDir, "story-dir", "", "directory of Lua story files (overrides --story)")
	f.IntVar(&fv.cfg.Width, "width", 0, "output line width")
	f.StringVar(&fv.cfg.Prompt, "prompt", "", "replace the story's prompt")
	f.StringVar(&fv.cfg.MatchPolicy, "match-policy", "", "rule selection: highest-priority or first-eligible")
	f.BoolVar(&fv.cfg.Plain, "plain", false, "line mode even on a terminal")
	f.StringVar(&fv.cfg.Log.File, "log-file", "", "write logs to this file")
	f.StringVar(&fv.script, "script", "", "play commands from a file, echoing each one")
	f.BoolVarP(&fv.verbose, "verbose", "v", false, "debug logging")

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.AddCommand(newStoriesCmd())
	return cmd
}

func newStoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stories",
		Short: "List the built-in stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range story.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// resolveConfig layers the changed flags over the loaded config.
func resolveConfig(cmd *cobra.Command, fv flagValues) (config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("story") {
		cfg.Story = fv.cfg.Story
		cfg.StoryDir = ""
	}
	if changed("story-dir") {
		cfg.StoryDir = fv.cfg.StoryDir
	}
	if changed("width") {
		cfg.Width = fv.cfg.Width
	}
	if changed("prompt") {
		cfg.Prompt = fv.cfg.Prompt
	}
	if changed("match-policy") {
		cfg.MatchPolicy = fv.cfg.MatchPolicy
	}
	if changed("plain") {
		cfg.Plain = fv.cfg.Plain
	}
	if changed("log-file") {
		cfg.Log.File = fv.cfg.Log.File
	}
	if fv.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// play runs one session. The full-screen UI is used only when out is a
// terminal and neither --plain nor --script was given.
func play(cfg config.Config, script string, in io.Reader, out io.Writer) error {
	interactive := script == "" && !cfg.Plain && isTerminal(out)

	logger, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	name, fn, err := selectStory(cfg)
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("session", uuid.NewString()), zap.String("story", name))

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	var transcript bytes.Buffer
	sink := out
	if interactive {
		sink = &transcript
	}
	eng := engine.New(output.New(sink, cfg.Width),
		engine.WithLogger(logger),
		engine.WithPolicy(policy))

	release, err := story.Install(eng, fn)
	defer release()
	if err != nil {
		logger.Error("loading story failed", zap.Error(err))
		return fmt.Errorf("loading story %s: %w", name, err)
	}
	if cfg.Prompt != "" {
		eng.Prompt = cfg.Prompt
	}
	logger.Info("session started",
		zap.Stringer("policy", policy),
		zap.Int("width", cfg.Width),
		zap.Bool("interactive", interactive))

	if interactive {
		err = tui.Run(eng, &transcript, name)
	} else {
		err = runLineMode(eng, script, in)
	}
	if err != nil {
		logger.Error("session failed", zap.Int("turn", eng.Turns()), zap.Error(err))
	}
	logger.Info("session ended", zap.Int("turns", eng.Turns()), zap.Bool("exited", eng.Exited()))
	return err
}

func runLineMode(eng *engine.Engine, script string, in io.Reader) error {
	c := cli.New(eng)
	c.In = in
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	return c.Run()
}

func selectStory(cfg config.Config) (string, story.Func, error) {
	if cfg.StoryDir != "" {
		return filepath.Base(filepath.Clean(cfg.StoryDir)), loader.Dir(cfg.StoryDir), nil
	}
	fn, err := story.Lookup(cfg.Story)
	if err != nil {
		return cfg.Story, nil, err
	}
	return cfg.Story, fn, nil
}

// newLogger builds the session logger. Logs go to the configured file,
// else to stderr; the full-screen UI without a log file gets no logging
// so the screen stays clean.
func newLogger(cfg config.Config, interactive bool) (*zap.Logger, error) {
	if interactive && cfg.Log.File == "" {
		return zap.NewNop(), nil
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if lvl <= zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	if cfg.Log.File != "" {
		zc.OutputPaths = []string{cfg.Log.File}
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// isTerminal reports whether w is a terminal (not piped/redirected).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
