package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
	"github.com/nathoo/twoword/types"
)

// Metatable names for the userdata handed to scripts.
const (
	wordType    = "twoword.word"
	termType    = "twoword.term"
	messageType = "twoword.message"
	roomType    = "twoword.room"
	objectType  = "twoword.object"
	playerType  = "twoword.player"
	eventType   = "twoword.event"
	handlerType = "twoword.handler"
)

// msgBox wraps a message so userdata of every message kind shares one Go
// type.
type msgBox struct{ m message.Message }

// wrap returns the userdata for v. World objects, words, terms, and
// handlers map to a single userdata each so scripts can compare them
// with ==.
func (s *session) wrap(v any) lua.LValue {
	var kind string
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case *vocab.Entry:
		if x == nil {
			return lua.LNil
		}
		kind = wordType
	case *vocab.Term:
		if x == nil {
			return lua.LNil
		}
		kind = termType
	case *world.Room:
		if x == nil {
			return lua.LNil
		}
		kind = roomType
	case *world.Object:
		if x == nil {
			return lua.LNil
		}
		kind = objectType
	case *world.Player:
		if x == nil {
			return lua.LNil
		}
		kind = playerType
	case *events.Handler:
		if x == nil {
			return lua.LNil
		}
		kind = handlerType
	case *events.Event:
		return s.newUserData(x, eventType)
	case message.Message:
		return s.newUserData(&msgBox{m: x}, messageType)
	default:
		return lua.LString(fmt.Sprint(v))
	}
	if ud, ok := s.handles[v]; ok {
		return ud
	}
	ud := s.newUserData(v, kind)
	s.handles[v] = ud
	return ud
}

func (s *session) newUserData(v any, kind string) *lua.LUserData {
	ud := s.L.NewUserData()
	ud.Value = v
	s.L.SetMetatable(ud, s.L.GetTypeMetatable(kind))
	return ud
}

// toValue converts a script value to a property value.
func toValue(lv lua.LValue) (types.Value, error) {
	switch v := lv.(type) {
	case lua.LBool:
		return types.BoolVal(bool(v)), nil
	case lua.LNumber:
		f := float64(v)
		if f != float64(int(f)) {
			return types.Value{}, fmt.Errorf("property values must be whole numbers, got %v", f)
		}
		return types.IntVal(int(f)), nil
	case lua.LString:
		return types.StringVal(string(v)), nil
	case *lua.LUserData:
		if b, ok := v.Value.(*msgBox); ok {
			return types.RefVal(b.m), nil
		}
		return types.RefVal(v.Value), nil
	default:
		return types.Value{}, fmt.Errorf("cannot store a %s as a property", lv.Type())
	}
}

// fromValue converts a property value for a script.
func (s *session) fromValue(v types.Value) lua.LValue {
	switch v.Kind() {
	case types.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case types.KindInt:
		i, _ := v.AsInt()
		return lua.LNumber(i)
	case types.KindString:
		str, _ := v.AsString()
		return lua.LString(str)
	case types.KindRef:
		r, _ := v.AsRef()
		return s.wrap(r)
	default:
		return lua.LNil
	}
}

// toArg converts a script value to a message argument. Userdata render
// through their String methods.
func toArg(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	case *lua.LUserData:
		if b, ok := v.Value.(*msgBox); ok {
			str, _ := message.String(b.m)
			return str
		}
		return v.Value
	default:
		return lv.String()
	}
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getFunction returns a function field from a Lua table, or nil.
func getFunction(tbl *lua.LTable, key string) *lua.LFunction {
	if fn, ok := tbl.RawGetString(key).(*lua.LFunction); ok {
		return fn
	}
	return nil
}

func checkWord(L *lua.LState, n int) *vocab.Entry {
	if w, ok := L.CheckUserData(n).Value.(*vocab.Entry); ok {
		return w
	}
	L.ArgError(n, "word expected")
	return nil
}

// optWord accepts a word or nil.
func optWord(L *lua.LState, n int) *vocab.Entry {
	if L.Get(n) == lua.LNil {
		return nil
	}
	return checkWord(L, n)
}

func checkTerm(L *lua.LState, n int) *vocab.Term {
	if t, ok := L.CheckUserData(n).Value.(*vocab.Term); ok {
		return t
	}
	L.ArgError(n, "term expected")
	return nil
}

func checkRoom(L *lua.LState, n int) *world.Room {
	if r, ok := L.CheckUserData(n).Value.(*world.Room); ok {
		return r
	}
	L.ArgError(n, "room expected")
	return nil
}

func checkObject(L *lua.LState, n int) *world.Object {
	if o, ok := L.CheckUserData(n).Value.(*world.Object); ok {
		return o
	}
	L.ArgError(n, "object expected")
	return nil
}

func checkPlayer(L *lua.LState, n int) *world.Player {
	if p, ok := L.CheckUserData(n).Value.(*world.Player); ok {
		return p
	}
	L.ArgError(n, "player expected")
	return nil
}

func checkEvent(L *lua.LState, n int) *events.Event {
	if e, ok := L.CheckUserData(n).Value.(*events.Event); ok {
		return e
	}
	L.ArgError(n, "event expected")
	return nil
}

func checkHandler(L *lua.LState, n int) *events.Handler {
	if h, ok := L.CheckUserData(n).Value.(*events.Handler); ok {
		return h
	}
	L.ArgError(n, "handler expected")
	return nil
}

// checkContainer accepts a room, object, or player.
func checkContainer(L *lua.LState, n int) *world.Container {
	switch x := L.CheckUserData(n).Value.(type) {
	case *world.Room:
		return &x.Container
	case *world.Object:
		return &x.Container
	case *world.Player:
		return &x.Container
	}
	L.ArgError(n, "room, object, or player expected")
	return nil
}

// toMessage coerces a script value to a message: strings are literals,
// tables are concatenations, and message userdata pass through.
func (s *session) toMessage(L *lua.LState, lv lua.LValue, n int) message.Message {
	switch v := lv.(type) {
	case lua.LString:
		return s.b.Msg(string(v))
	case *lua.LTable:
		return s.b.Concat(s.messages(L, v, n)...)
	case *lua.LUserData:
		if b, ok := v.Value.(*msgBox); ok {
			return b.m
		}
	case *lua.LNilType:
		return nil
	}
	L.ArgError(n, "message expected")
	return nil
}

func (s *session) checkMessage(L *lua.LState, n int) message.Message {
	m := s.toMessage(L, L.Get(n), n)
	if m == nil {
		L.ArgError(n, "message expected")
	}
	return m
}

// messages converts the array part of tbl.
func (s *session) messages(L *lua.LState, tbl *lua.LTable, n int) []message.Message {
	var out []message.Message
	for i := 1; i <= tbl.Len(); i++ {
		if m := s.toMessage(L, tbl.RawGetInt(i), n); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// messageArgs collects message arguments from position first onward.
func messageArgs(L *lua.LState, first int) []any {
	var args []any
	for i := first; i <= L.GetTop(); i++ {
		args = append(args, toArg(L.Get(i)))
	}
	return args
}
