package story

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nathoo/twoword/engine"
)

// Func builds a story with b.
type Func func(b *Builder) error

// ErrUnknownStory is returned by Lookup for an unregistered name.
var ErrUnknownStory = errors.New("unknown story")

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{}
)

// Register makes a story available under name. Registering the same name
// twice panics.
func Register(name string, fn Func) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if fn == nil {
		panic("story: Register with nil func for " + name)
	}
	if _, dup := registry[name]; dup {
		panic("story: Register called twice for " + name)
	}
	registry[name] = fn
}

// Lookup returns the story registered under name.
func Lookup(name string) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStory)
	}
	return fn, nil
}

// Names returns the registered story names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install builds fn into e and validates the result. The returned release
// function frees anything the story holds open and must be called when
// the session ends; it is never nil.
func Install(e *engine.Engine, fn Func) (release func(), err error) {
	b := NewBuilder(e)
	if err := fn(b); err != nil {
		b.release()
		return func() {}, err
	}
	if err := b.Build(); err != nil {
		b.release()
		return func() {}, err
	}
	return b.release, nil
}
