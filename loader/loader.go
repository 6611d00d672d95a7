// Package loader builds stories from Lua scripts. The scripts run once to
// declare vocabulary, messages, rooms, objects, rules, and handlers; the
// VM then stays open so rule effects and handlers written in Lua run
// during play. It is closed when the session is released.
package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/story"
)

// session carries the state shared by the API functions while a story
// loads and plays.
type session struct {
	b   *story.Builder
	L   *lua.LState
	log *zap.Logger

	// file is the script being executed, for error context.
	file string

	handles map[any]*lua.LUserData
	terms   []string
	used    map[*vocab.Term]bool
	paths   []rawPath
	rules   []rawRule
	ve      *ValidationError
}

func newSession(b *story.Builder, L *lua.LState) *session {
	return &session{
		b:       b,
		L:       L,
		log:     b.Engine().Logger().Named("lua"),
		handles: map[any]*lua.LUserData{},
		used:    map[*vocab.Term]bool{},
		ve:      &ValidationError{},
	}
}

func (s *session) declareTerm(name string) {
	for _, n := range s.terms {
		if n == name {
			return
		}
	}
	s.terms = append(s.terms, name)
}

func (s *session) useTerm(t *vocab.Term) {
	if t != nil {
		s.used[t] = true
	}
}

func (s *session) errorf(format string, args ...any) {
	s.ve.Errors = append(s.ve.Errors, fmt.Sprintf(format, args...))
}

func (s *session) warnf(format string, args ...any) {
	s.ve.Warnings = append(s.ve.Warnings, fmt.Sprintf(format, args...))
}

// call runs fn in protected mode. With nret > 0 the results are left on
// the stack for the caller to pop.
func (s *session) call(fn *lua.LFunction, nret int, args ...lua.LValue) error {
	return s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
}

// Dir returns a story that loads the .lua files in dir.
func Dir(dir string) story.Func {
	return FS(os.DirFS(dir), ".")
}

// FS returns a story that loads the .lua files in dir of fsys. game.lua
// runs first and the rest in name order.
func FS(fsys fs.FS, dir string) story.Func {
	return func(b *story.Builder) error {
		return load(b, fsys, dir)
	}
}

func load(b *story.Builder, fsys fs.FS, dir string) error {
	// Discover .lua files.
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading story directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM. It lives as long as the session.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	b.Cleanup(L.Close)
	openSafeLibs(L)
	sandbox(L)

	s := newSession(b, L)
	registerAPI(L, s)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		s.file = f
		fn, err := L.Load(bytes.NewReader(src), f)
		if err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
		L.SetTop(0)
	}
	s.file = ""

	compile(s)
	return validate(s)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "module", "require",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Stories replay the same way every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}

// sortedLuaFiles puts game.lua first and the rest in name order.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
