package loader

import (
	"errors"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
	"github.com/nathoo/twoword/types"
)

// registerAPI registers the userdata types, the authoring constructors,
// and the runtime helpers as globals.
func registerAPI(L *lua.LState, s *session) {
	registerTypes(L, s)
	registerConstructors(L, s)
	registerMessages(L, s)
	registerRuntime(L, s)
}

func registerConstructors(L *lua.LState, s *session) {
	// Word("go", "g", ...) creates a prefix-matched word with abbreviations.
	L.SetGlobal("Word", L.NewFunction(func(L *lua.LState) int {
		return s.word(L, vocab.Prefix)
	}))

	// Exact("xyzzy", ...) creates a word that only matches in full.
	L.SetGlobal("Exact", L.NewFunction(func(L *lua.LState) int {
		return s.word(L, vocab.Exact)
	}))

	// Term "name" { "word", wordHandle, ... } is curried: Term("name")
	// returns a function that takes the word list.
	L.SetGlobal("Term", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		t := s.b.Term(name)
		s.declareTerm(name)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			s.addWords(L, t, L.CheckTable(1))
			L.Push(s.wrap(t))
			return 1
		}))
		return 1
	}))

	// Noise { "a", "the", ... }
	L.SetGlobal("Noise", L.NewFunction(func(L *lua.LState) int {
		s.addWords(L, s.b.Engine().Noise, L.CheckTable(1))
		L.Push(s.wrap(s.b.Engine().Noise))
		return 1
	}))

	// Special("word.unknown", msg)
	L.SetGlobal("Special", L.NewFunction(func(L *lua.LState) int {
		s.b.Special(L.CheckString(1), s.checkMessage(L, 2))
		return 0
	}))

	// Prompt "> "
	L.SetGlobal("Prompt", L.NewFunction(func(L *lua.LState) int {
		s.b.Prompt(L.CheckString(1))
		return 0
	}))

	// Room "id" { description = ..., brief = ... }
	L.SetGlobal("Room", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			r := s.b.Room(name,
				s.toMessage(L, tbl.RawGetString("description"), 1),
				s.toMessage(L, tbl.RawGetString("brief"), 1))
			L.Push(s.wrap(r))
			return 1
		}))
		return 1
	}))

	// Object "id" { term = ..., inventory = ..., here = ..., long = ... }
	L.SetGlobal("Object", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			var t *vocab.Term
			switch v := tbl.RawGetString("term").(type) {
			case *lua.LUserData:
				t, _ = v.Value.(*vocab.Term)
			case lua.LString:
				t, _ = s.b.LookupTerm(string(v))
			}
			s.useTerm(t)
			o := s.b.Object(name, t,
				s.toMessage(L, tbl.RawGetString("inventory"), 1),
				s.toMessage(L, tbl.RawGetString("here"), 1),
				s.toMessage(L, tbl.RawGetString("long"), 1))
			L.Push(s.wrap(o))
			return 1
		}))
		return 1
	}))

	// Player "You"
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Player(L.CheckString(1))))
		return 1
	}))

	// Path(term, from, to). Each argument is a handle or a name; names
	// may refer to things defined later.
	L.SetGlobal("Path", L.NewFunction(func(L *lua.LState) int {
		s.paths = append(s.paths, rawPath{
			term: L.CheckAny(1),
			from: L.CheckAny(2),
			to:   L.CheckAny(3),
			file: s.file,
		})
		return 0
	}))

	// Rule { term1, term2, priority = n, valid = fn, effect = fn, name = "..." }
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		s.rules = append(s.rules, rawRule{
			name:     getString(tbl, "name"),
			term1:    tbl.RawGetInt(1),
			term2:    tbl.RawGetInt(2),
			priority: tbl.RawGetString("priority"),
			valid:    getFunction(tbl, "valid"),
			effect:   getFunction(tbl, "effect"),
			file:     s.file,
		})
		return 0
	}))

	// On("event.type", "name", fn) subscribes fn and returns the handler.
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		h := s.handler(L)
		s.b.Engine().Events.AddHandler(h)
		L.Push(s.wrap(h))
		return 1
	}))

	// Handler("event.type", "name", fn) returns an unsubscribed handler.
	L.SetGlobal("Handler", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.handler(L)))
		return 1
	}))
}

func registerMessages(L *lua.LState, s *session) {
	// Msg "text"
	L.SetGlobal("Msg", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Msg(L.CheckString(1))))
		return 1
	}))

	// Template "I don't understand %1."
	L.SetGlobal("Template", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Template(L.CheckString(1))))
		return 1
	}))

	// Concat { ... }, Select { ... }, Cycle { ... }
	L.SetGlobal("Concat", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Concat(s.messages(L, L.CheckTable(1), 1)...)))
		return 1
	}))
	L.SetGlobal("Select", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Select(s.messages(L, L.CheckTable(1), 1)...)))
		return 1
	}))
	L.SetGlobal("Cycle", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Cycle(s.messages(L, L.CheckTable(1), 1)...)))
		return 1
	}))
}

func registerRuntime(L *lua.LState, s *session) {
	out := s.b.Engine().Out

	// Print(msg, args...), Println(msg, args...)
	L.SetGlobal("Print", L.NewFunction(func(L *lua.LState) int {
		s.raise(L, message.Print(s.checkMessage(L, 1), out, messageArgs(L, 2)...))
		return 0
	}))
	L.SetGlobal("Println", L.NewFunction(func(L *lua.LState) int {
		s.raise(L, message.Println(s.checkMessage(L, 1), out, messageArgs(L, 2)...))
		return 0
	}))

	// AltPrint(msg, alt, args...), AltPrintln(msg, alt, args...)
	L.SetGlobal("AltPrint", L.NewFunction(func(L *lua.LState) int {
		s.raise(L, message.AltPrint(s.checkMessage(L, 1), L.CheckInt(2), out, messageArgs(L, 3)...))
		return 0
	}))
	L.SetGlobal("AltPrintln", L.NewFunction(func(L *lua.LState) int {
		s.raise(L, message.AltPrintln(s.checkMessage(L, 1), L.CheckInt(2), out, messageArgs(L, 3)...))
		return 0
	}))

	L.SetGlobal("Newline", L.NewFunction(func(L *lua.LState) int {
		out.Newline()
		return 0
	}))
	L.SetGlobal("StartLine", L.NewFunction(func(L *lua.LState) int {
		out.StartLine()
		return 0
	}))

	// LookAround() describes the player's room and what is in it.
	L.SetGlobal("LookAround", L.NewFunction(func(L *lua.LState) int {
		if p := s.b.Engine().World.Player; p != nil {
			s.raise(L, p.LookAround(out))
		}
		return 0
	}))

	// SetExit(flag) returns the previous exit flag.
	L.SetGlobal("SetExit", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(s.b.Engine().SetExit(L.OptBool(1, true))))
		return 1
	}))
	L.SetGlobal("Exited", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(s.b.Engine().Exited()))
		return 1
	}))
	L.SetGlobal("Turns", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(s.b.Engine().Turns()))
		return 1
	}))

	// Enqueue("event.type", { prop = value, ... }) queues an event.
	L.SetGlobal("Enqueue", L.NewFunction(func(L *lua.LState) int {
		ev := events.New(events.TypeOf(L.CheckString(1)))
		if tbl := L.OptTable(2, nil); tbl != nil {
			tbl.ForEach(func(k, v lua.LValue) {
				val, err := toValue(v)
				if err == nil {
					err = ev.Props.Set(k.String(), val)
				}
				s.raise(L, err)
			})
		}
		s.b.Engine().Enqueue(ev)
		L.Push(s.wrap(ev))
		return 1
	}))

	// AddHandler(h), RemoveHandler(h) change subscriptions during play.
	L.SetGlobal("AddHandler", L.NewFunction(func(L *lua.LState) int {
		s.b.Engine().Events.AddHandler(checkHandler(L, 1))
		return 0
	}))
	L.SetGlobal("RemoveHandler", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(s.b.Engine().Events.RemoveHandler(checkHandler(L, 1))))
		return 1
	}))

	// FindObject(word) returns the first object the word names;
	// FindNear(word) prefers one the player can see.
	L.SetGlobal("FindObject", L.NewFunction(func(L *lua.LState) int {
		L.Push(s.wrap(s.b.Engine().World.FindObject(checkWord(L, 1))))
		return 1
	}))
	L.SetGlobal("FindNear", L.NewFunction(func(L *lua.LState) int {
		w := s.b.Engine().World
		L.Push(s.wrap(w.FindNear(w.Player, checkWord(L, 1))))
		return 1
	}))

	// print goes to the log instead of the screen.
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		args := make([]any, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.Get(i).String())
		}
		s.log.Info("lua print", zap.String("file", s.file), zap.Any("args", args))
		return 0
	}))
}

func registerTypes(L *lua.LState, s *session) {
	container := map[string]lua.LGFunction{
		"name":      s.name,
		"get":       s.getProp,
		"set":       s.setProp,
		"has":       s.hasProp,
		"state":     s.state,
		"set_state": s.setState,
		"add":       s.add,
		"remove":    s.remove,
		"contains":  s.contains,
		"contents":  s.contents,
	}
	with := func(extra map[string]lua.LGFunction) map[string]lua.LGFunction {
		m := map[string]lua.LGFunction{}
		for k, v := range container {
			m[k] = v
		}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	s.typeMetatable(L, roomType, with(map[string]lua.LGFunction{
		"description": func(L *lua.LState) int {
			L.Push(s.wrap(checkRoom(L, 1).Description))
			return 1
		},
		"brief": func(L *lua.LState) int {
			L.Push(s.wrap(checkRoom(L, 1).Brief))
			return 1
		},
	}))

	s.typeMetatable(L, objectType, with(map[string]lua.LGFunction{
		"inventory": func(L *lua.LState) int {
			L.Push(s.wrap(checkObject(L, 1).Inventory))
			return 1
		},
		"here": func(L *lua.LState) int {
			L.Push(s.wrap(checkObject(L, 1).HereIs))
			return 1
		},
		"long": func(L *lua.LState) int {
			L.Push(s.wrap(checkObject(L, 1).Long))
			return 1
		},
		"term": func(L *lua.LState) int {
			L.Push(s.wrap(checkObject(L, 1).Term))
			return 1
		},
	}))

	s.typeMetatable(L, playerType, with(map[string]lua.LGFunction{
		"location": func(L *lua.LState) int {
			L.Push(s.wrap(checkPlayer(L, 1).Location()))
			return 1
		},
		"apport": func(L *lua.LState) int {
			checkPlayer(L, 1).ApportTo(checkRoom(L, 2))
			return 0
		},
		"move": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L, 1).MoveOnPath(checkWord(L, 2))))
			return 1
		},
		"carries": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L, 1).Carries(checkObject(L, 2))))
			return 1
		},
		"can_see": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L, 1).CanSee(checkObject(L, 2))))
			return 1
		},
		"look": func(L *lua.LState) int {
			s.raise(L, checkPlayer(L, 1).LookAround(s.b.Engine().Out))
			return 0
		},
	}))

	s.typeMetatable(L, wordType, map[string]lua.LGFunction{
		"text": func(L *lua.LState) int {
			L.Push(lua.LString(checkWord(L, 1).Text()))
			return 1
		},
	})

	s.typeMetatable(L, termType, map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkTerm(L, 1).Name()))
			return 1
		},
		"contains": func(L *lua.LState) int {
			w := optWord(L, 2)
			L.Push(lua.LBool(w != nil && checkTerm(L, 1).Contains(w)))
			return 1
		},
	})

	s.typeMetatable(L, messageType, map[string]lua.LGFunction{
		// msg:render(args...) returns the text with alternative 0.
		"render": func(L *lua.LState) int {
			b, ok := L.CheckUserData(1).Value.(*msgBox)
			if !ok {
				L.ArgError(1, "message expected")
			}
			str, err := message.String(b.m, messageArgs(L, 2)...)
			s.raise(L, err)
			L.Push(lua.LString(str))
			return 1
		},
	})

	s.typeMetatable(L, eventType, map[string]lua.LGFunction{
		"type": func(L *lua.LState) int {
			L.Push(lua.LString(checkEvent(L, 1).Type().Name()))
			return 1
		},
		"get": func(L *lua.LState) int {
			v, err := checkEvent(L, 1).Props.Get(L.CheckString(2))
			if errors.Is(err, types.ErrNoProperty) {
				L.Push(lua.LNil)
				return 1
			}
			s.raise(L, err)
			L.Push(s.fromValue(v))
			return 1
		},
		"set": func(L *lua.LState) int {
			ev := checkEvent(L, 1)
			v, err := toValue(L.CheckAny(3))
			if err == nil {
				err = ev.Props.Set(L.CheckString(2), v)
			}
			s.raise(L, err)
			return 0
		},
	})

	s.typeMetatable(L, handlerType, map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkHandler(L, 1).Name))
			return 1
		},
	})
}

func (s *session) typeMetatable(L *lua.LState, name string, methods map[string]lua.LGFunction) {
	mt := L.NewTypeMetatable(name)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(name + ": " + toArgString(L.CheckUserData(1).Value)))
		return 1
	}))
}

func toArgString(v any) string {
	switch x := v.(type) {
	case interface{ String() string }:
		return x.String()
	case *msgBox:
		str, _ := message.String(x.m)
		return str
	default:
		return "?"
	}
}

// word implements Word and Exact.
func (s *session) word(L *lua.LState, mode vocab.MatchMode) int {
	text := L.CheckString(1)
	var abbrevs []string
	for i := 2; i <= L.GetTop(); i++ {
		abbrevs = append(abbrevs, L.CheckString(i))
	}
	L.Push(s.wrap(s.b.Word(text, mode, abbrevs...)))
	return 1
}

// addWords adds strings as prefix words and word handles as they are.
func (s *session) addWords(L *lua.LState, t *vocab.Term, tbl *lua.LTable) {
	for i := 1; i <= tbl.Len(); i++ {
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LString:
			s.b.AddWords(t, vocab.Prefix, string(v))
		case *lua.LUserData:
			w, ok := v.Value.(*vocab.Entry)
			if !ok {
				L.ArgError(1, "term entries must be strings or words")
			}
			t.Add(w)
		default:
			L.ArgError(1, "term entries must be strings or words")
		}
	}
}

// handler builds a handler from (event, name, fn) arguments.
func (s *session) handler(L *lua.LState) *events.Handler {
	event := L.CheckString(1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)
	return s.b.Handler(event, name, func(ev *events.Event) error {
		return s.call(fn, 0, s.wrap(ev))
	})
}

// raise turns a Go error into a Lua error.
func (s *session) raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func (s *session) name(L *lua.LState) int {
	switch x := L.CheckUserData(1).Value.(type) {
	case *world.Room:
		L.Push(lua.LString(x.Name))
	case *world.Object:
		L.Push(lua.LString(x.Name))
	case *world.Player:
		L.Push(lua.LString(x.Name))
	default:
		L.ArgError(1, "room, object, or player expected")
	}
	return 1
}

func (s *session) getProp(L *lua.LState) int {
	c := checkContainer(L, 1)
	v, err := c.Props.Get(L.CheckString(2))
	if errors.Is(err, types.ErrNoProperty) {
		L.Push(lua.LNil)
		return 1
	}
	s.raise(L, err)
	L.Push(s.fromValue(v))
	return 1
}

func (s *session) setProp(L *lua.LState) int {
	c := checkContainer(L, 1)
	v, err := toValue(L.CheckAny(3))
	if err == nil {
		err = c.Props.Set(L.CheckString(2), v)
	}
	s.raise(L, err)
	return 0
}

func (s *session) hasProp(L *lua.LState) int {
	L.Push(lua.LBool(checkContainer(L, 1).Props.Has(L.CheckString(2))))
	return 1
}

func (s *session) state(L *lua.LState) int {
	L.Push(lua.LNumber(checkContainer(L, 1).State()))
	return 1
}

func (s *session) setState(L *lua.LState) int {
	checkContainer(L, 1).SetState(L.CheckInt(2))
	return 0
}

func (s *session) add(L *lua.LState) int {
	checkContainer(L, 1).Add(checkObject(L, 2))
	return 0
}

func (s *session) remove(L *lua.LState) int {
	L.Push(lua.LBool(checkContainer(L, 1).Remove(checkObject(L, 2))))
	return 1
}

func (s *session) contains(L *lua.LState) int {
	L.Push(lua.LBool(checkContainer(L, 1).Contains(checkObject(L, 2))))
	return 1
}

func (s *session) contents(L *lua.LState) int {
	tbl := L.NewTable()
	for i, o := range checkContainer(L, 1).Contents() {
		tbl.RawSetInt(i+1, s.wrap(o))
	}
	L.Push(tbl)
	return 1
}
