package world

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/output"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/types"
)

func term(name string, words ...*vocab.Entry) *vocab.Term {
	t := vocab.NewTerm(name)
	t.Add(words...)
	return t
}

func TestPlayer_MoveOnPath(t *testing.T) {
	east := vocab.NewEntry("east", vocab.Prefix)
	in := vocab.NewEntry("in", vocab.Prefix)
	west := vocab.NewEntry("west", vocab.Prefix)

	balcony := NewRoom("balcony", nil, nil)
	north := NewRoom("northroom", nil, nil)
	balcony.AddPath(term("eastorin", east, in), north)
	north.AddPath(term("west", west), balcony)

	p := NewPlayer("You")
	assert.False(t, p.MoveOnPath(east), "no location yet")

	p.ApportTo(balcony)
	assert.False(t, p.MoveOnPath(west))
	assert.Same(t, balcony, p.Location())

	assert.True(t, p.MoveOnPath(in))
	assert.Same(t, north, p.Location())
	assert.True(t, p.MoveOnPath(west))
	assert.Same(t, balcony, p.Location())
}

func TestContainer_AddMovesBetweenHolders(t *testing.T) {
	coin := NewObject("coin", term("coin"), message.Literal("a gold coin"), nil, nil)
	room := NewRoom("northroom", nil, nil)
	p := NewPlayer("You")
	p.ApportTo(room)

	room.Add(coin)
	assert.True(t, room.Contains(coin))
	assert.Same(t, &room.Container, coin.Holder())
	assert.True(t, p.CanSee(coin))
	assert.False(t, p.Carries(coin))

	p.Add(coin)
	assert.False(t, room.Contains(coin), "taken out of the room")
	assert.True(t, p.Carries(coin))
	assert.Equal(t, 1, p.Len())

	p.Add(coin)
	assert.Equal(t, 1, p.Len(), "adding twice is a no-op")

	assert.True(t, p.Remove(coin))
	assert.Nil(t, coin.Holder())
	assert.False(t, p.Remove(coin))
}

func TestObject_MessagesBoundToState(t *testing.T) {
	door := NewObject("door", term("door"),
		message.Literal("a door"),
		message.Select{message.Literal("It is closed."), message.Literal("It is open.")},
		nil)

	s, err := message.String(door.HereIs)
	require.NoError(t, err)
	assert.Equal(t, "It is closed.", s)

	door.SetState(1)
	s, err = message.String(door.HereIs)
	require.NoError(t, err)
	assert.Equal(t, "It is open.", s)

	s, err = message.String(door.Long)
	require.NoError(t, err)
	assert.Equal(t, "", s, "missing messages render empty")

	inv, err := door.InventoryText()
	require.NoError(t, err)
	assert.Equal(t, "a door", inv)
}

func TestPlayer_LookAround(t *testing.T) {
	room := NewRoom("northroom", message.Literal("You are in the north end of the Big Room."), nil)
	room.Add(NewObject("coin", term("coin"), nil, message.Literal("There is a gold coin here."), nil))
	p := NewPlayer("You")
	p.ApportTo(room)

	var buf bytes.Buffer
	out := output.New(&buf, 40)
	require.NoError(t, p.LookAround(out))
	assert.Equal(t, "You are in the north end of the Big\nRoom. There is a gold coin here.\n", buf.String())
}

func TestWorld_FindObject(t *testing.T) {
	wand := vocab.NewEntry("wand", vocab.Prefix)
	stick := vocab.NewEntry("stick", vocab.Prefix)
	key := vocab.NewEntry("key", vocab.Prefix)

	w := New()
	first := NewObject("magicwand", term("magicwand", wand, stick), nil, nil, nil)
	second := NewObject("stick", term("stick", stick), nil, nil, nil)
	w.AddObject(first)
	w.AddObject(second)

	assert.Same(t, first, w.FindObject(stick), "first registered wins")
	assert.Same(t, first, w.FindObject(wand))
	assert.Nil(t, w.FindObject(key))
	assert.Len(t, w.Objects(), 2)
}

func TestWorld_FindNear(t *testing.T) {
	door := vocab.NewEntry("door", vocab.Prefix)
	w := New()
	south := NewRoom("southroom", nil, nil)
	ballroom := NewRoom("ballroom", nil, nil)
	southDoor := NewObject("south room door", term("door", door), nil, nil, nil)
	ballDoor := NewObject("ballroom door", term("door", door), nil, nil, nil)
	w.AddObject(southDoor)
	w.AddObject(ballDoor)
	south.Add(southDoor)
	ballroom.Add(ballDoor)

	p := NewPlayer("You")
	p.ApportTo(ballroom)
	assert.Same(t, ballDoor, w.FindNear(p, door))
	assert.Same(t, southDoor, w.FindObject(door))

	p.ApportTo(NewRoom("hall", nil, nil))
	assert.Same(t, southDoor, w.FindNear(p, door), "falls back to the first match")
}

func TestWorld_Rooms(t *testing.T) {
	w := New()
	hall := NewRoom("hall", nil, nil)
	w.AddRoom(hall)
	got, ok := w.Room("hall")
	require.True(t, ok)
	assert.Same(t, hall, got)
	_, ok = w.Room("bar")
	assert.False(t, ok)
	assert.Equal(t, "hall", hall.String())
}

func TestContainer_Props(t *testing.T) {
	hall := NewRoom("hall", nil, nil)
	require.NoError(t, hall.Props.Set("lit", types.BoolVal(true)))
	require.NoError(t, hall.Props.Set("lit", types.BoolVal(false)), "world props are rewritable")

	lit, err := hall.Props.GetBool("lit")
	require.NoError(t, err)
	assert.False(t, lit)

	_, err = hall.Props.GetInt("lit")
	assert.True(t, errors.Is(err, types.ErrWrongKind))
	_, err = hall.Props.GetBool("beenhere")
	assert.True(t, errors.Is(err, types.ErrNoProperty))
}
