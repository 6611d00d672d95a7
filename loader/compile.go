package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/twoword/engine/rules"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
)

// rawPath holds a Path declaration until every room and term exists.
type rawPath struct {
	term, from, to lua.LValue
	file           string
}

// rawRule holds a Rule declaration until every term exists.
type rawRule struct {
	name         string
	term1, term2 lua.LValue
	priority     lua.LValue
	valid        *lua.LFunction
	effect       *lua.LFunction
	file         string
}

// compile resolves the recorded paths and rules and adds them to the
// story in declaration order. Problems are collected in s.ve.
func compile(s *session) {
	for i, p := range s.paths {
		where := fmt.Sprintf("%s: path %d", p.file, i+1)
		t := s.resolveTerm(p.term, where)
		from := s.resolveRoom(p.from, where)
		to := s.resolveRoom(p.to, where)
		if t == nil || from == nil || to == nil {
			continue
		}
		s.useTerm(t)
		s.b.Path(t, from, to)
	}

	for i, raw := range s.rules {
		compileRule(s, i+1, raw)
	}
}

func compileRule(s *session, n int, raw rawRule) {
	where := fmt.Sprintf("%s: rule %d", raw.file, n)
	if raw.name != "" {
		where += " (" + raw.name + ")"
	}

	if raw.term1 == lua.LNil {
		s.errorf("%s: first term is required", where)
		return
	}
	t1 := s.resolveTerm(raw.term1, where)
	var t2 *vocab.Term
	if raw.term2 != lua.LNil {
		t2 = s.resolveTerm(raw.term2, where)
		if t2 == nil {
			return
		}
	}
	if t1 == nil {
		return
	}

	priority := 0
	switch p := raw.priority.(type) {
	case *lua.LNilType:
	case lua.LNumber:
		priority = int(p)
	default:
		s.errorf("%s: priority must be a number, got %s", where, raw.priority.Type())
		return
	}
	if raw.effect == nil {
		s.errorf("%s: effect function is required", where)
		return
	}

	s.useTerm(t1)
	s.useTerm(t2)
	r := s.b.Rule(t1, t2, priority, s.validFunc(raw.valid, where), s.effectFunc(raw.effect))
	r.Name = raw.name
}

func (s *session) validFunc(fn *lua.LFunction, where string) rules.ValidFunc {
	if fn == nil {
		return nil
	}
	return func(w1, w2 *vocab.Entry) (bool, error) {
		if err := s.call(fn, 1, s.wrap(w1), s.wrap(w2)); err != nil {
			return false, fmt.Errorf("%s: %w", where, err)
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)
		return lua.LVAsBool(ret), nil
	}
}

func (s *session) effectFunc(fn *lua.LFunction) rules.EffectFunc {
	return func(w1, w2 *vocab.Entry) error {
		return s.call(fn, 0, s.wrap(w1), s.wrap(w2))
	}
}

// resolveTerm accepts a term handle or the name of a term.
func (s *session) resolveTerm(lv lua.LValue, where string) *vocab.Term {
	switch v := lv.(type) {
	case *lua.LUserData:
		if t, ok := v.Value.(*vocab.Term); ok {
			return t
		}
	case lua.LString:
		if t, ok := s.b.LookupTerm(string(v)); ok {
			return t
		}
		s.errorf("%s: unknown term %q", where, string(v))
		return nil
	}
	s.errorf("%s: expected a term or term name, got %s", where, lv.Type())
	return nil
}

// resolveRoom accepts a room handle or the name of a room.
func (s *session) resolveRoom(lv lua.LValue, where string) *world.Room {
	switch v := lv.(type) {
	case *lua.LUserData:
		if r, ok := v.Value.(*world.Room); ok {
			return r
		}
	case lua.LString:
		if r, ok := s.b.LookupRoom(string(v)); ok {
			return r
		}
		s.errorf("%s: unknown room %q", where, string(v))
		return nil
	}
	s.errorf("%s: expected a room or room name, got %s", where, lv.Type())
	return nil
}
