// Package world holds the rooms, objects, and player a story plays out in.
// Rule effects and validity predicates read and change it; the engine
// itself never looks inside.
package world

import (
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/types"
)

// Container is the state shared by rooms, objects, and the player: an
// integer state that selects message alternatives, a property bag, and
// the objects it holds.
type Container struct {
	state    int
	Props    types.Props
	contents []*Object
}

// State returns the container's integer state.
func (c *Container) State() int { return c.state }

// SetState sets the container's integer state.
func (c *Container) SetState(s int) { c.state = s }

// Contains reports whether o is directly inside c.
func (c *Container) Contains(o *Object) bool {
	for _, x := range c.contents {
		if x == o {
			return true
		}
	}
	return false
}

// Contents returns the held objects in the order they were added.
func (c *Container) Contents() []*Object {
	return append([]*Object(nil), c.contents...)
}

// Len returns the number of held objects.
func (c *Container) Len() int { return len(c.contents) }

// Add puts o into c, taking it out of whatever held it before.
func (c *Container) Add(o *Object) {
	if o.holder == c {
		return
	}
	if o.holder != nil {
		o.holder.Remove(o)
	}
	c.contents = append(c.contents, o)
	o.holder = c
}

// Remove takes o out of c. It reports whether o was there.
func (c *Container) Remove(o *Object) bool {
	for i, x := range c.contents {
		if x == o {
			c.contents = append(c.contents[:i:i], c.contents[i+1:]...)
			o.holder = nil
			return true
		}
	}
	return false
}

// Room is a location the player can be in.
type Room struct {
	Container
	Name string

	// Description and Brief render with the room's state as the
	// alternative index.
	Description message.Message
	Brief       message.Message

	paths []path
}

type path struct {
	term *vocab.Term
	to   *Room
}

// NewRoom creates a room. Either message may be nil.
func NewRoom(name string, desc, brief message.Message) *Room {
	r := &Room{Name: name}
	r.Description = bindOrEmpty(desc, r)
	r.Brief = bindOrEmpty(brief, r)
	return r
}

// AddPath adds an exit taken by any word in t. Paths are tried in the
// order they were added.
func (r *Room) AddPath(t *vocab.Term, to *Room) {
	r.paths = append(r.paths, path{term: t, to: to})
}

// Exit returns the room reached by w, or nil if w leads nowhere from here.
func (r *Room) Exit(w *vocab.Entry) *Room {
	for _, p := range r.paths {
		if p.term.Contains(w) {
			return p.to
		}
	}
	return nil
}

func (r *Room) String() string { return r.Name }

// Object is a portable or fixed thing.
type Object struct {
	Container
	Name string
	Term *vocab.Term

	// Inventory is the short form ("a brass lamp"), HereIs is shown when
	// the object is seen in a room, and Long is the examine text. All
	// three render with the object's state as the alternative index.
	Inventory message.Message
	HereIs    message.Message
	Long      message.Message

	holder *Container
}

// NewObject creates an object named by the words in term.
func NewObject(name string, term *vocab.Term, inventory, hereIs, long message.Message) *Object {
	o := &Object{Name: name, Term: term}
	o.Inventory = bindOrEmpty(inventory, o)
	o.HereIs = bindOrEmpty(hereIs, o)
	o.Long = bindOrEmpty(long, o)
	return o
}

// Matches reports whether w names the object.
func (o *Object) Matches(w *vocab.Entry) bool { return o.Term.Contains(w) }

// Holder returns the container currently holding o, or nil.
func (o *Object) Holder() *Container { return o.holder }

// InventoryText renders the short form with the object's state.
func (o *Object) InventoryText() (string, error) {
	return message.String(o.Inventory)
}

func (o *Object) String() string { return o.Name }

// Player is the player's avatar. Its contents are the inventory.
type Player struct {
	Container
	Name     string
	location *Room
}

// NewPlayer creates a player with no location.
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// Location returns the current room, or nil before the story places the
// player.
func (p *Player) Location() *Room { return p.location }

// ApportTo puts the player in r without taking a path.
func (p *Player) ApportTo(r *Room) { p.location = r }

// MoveOnPath follows the exit named by w from the current room. It
// reports whether the player moved.
func (p *Player) MoveOnPath(w *vocab.Entry) bool {
	if p.location == nil {
		return false
	}
	to := p.location.Exit(w)
	if to == nil {
		return false
	}
	p.location = to
	return true
}

// Carries reports whether o is in the inventory.
func (p *Player) Carries(o *Object) bool { return p.Contains(o) }

// CanSee reports whether o is carried or in the current room.
func (p *Player) CanSee(o *Object) bool {
	return p.Contains(o) || (p.location != nil && p.location.Contains(o))
}

// LookAround prints the room description followed by what is here, and
// ends the paragraph.
func (p *Player) LookAround(out message.Sink) error {
	if p.location == nil {
		return nil
	}
	if err := message.Print(p.location.Description, out); err != nil {
		return err
	}
	for _, o := range p.location.contents {
		out.Print(" ")
		if err := message.Print(o.HereIs, out); err != nil {
			return err
		}
	}
	out.Println("")
	return nil
}

// World is everything a story built.
type World struct {
	Player  *Player
	rooms   []*Room
	objects []*Object
	byName  map[string]*Room
}

// New creates an empty world.
func New() *World {
	return &World{byName: map[string]*Room{}}
}

// AddRoom registers r. A later room with the same name replaces the
// earlier one in name lookups.
func (w *World) AddRoom(r *Room) {
	w.rooms = append(w.rooms, r)
	w.byName[r.Name] = r
}

// AddObject registers o.
func (w *World) AddObject(o *Object) {
	w.objects = append(w.objects, o)
}

// Room returns the room registered under name.
func (w *World) Room(name string) (*Room, bool) {
	r, ok := w.byName[name]
	return r, ok
}

// Rooms returns all rooms in registration order.
func (w *World) Rooms() []*Room { return append([]*Room(nil), w.rooms...) }

// Objects returns all objects in registration order.
func (w *World) Objects() []*Object { return append([]*Object(nil), w.objects...) }

// FindObject returns the first registered object named by word, or nil.
func (w *World) FindObject(word *vocab.Entry) *Object {
	for _, o := range w.objects {
		if o.Matches(word) {
			return o
		}
	}
	return nil
}

// FindNear is like FindObject but prefers an object p can see, so a word
// shared by several objects picks the one at hand.
func (w *World) FindNear(p *Player, word *vocab.Entry) *Object {
	var first *Object
	for _, o := range w.objects {
		if !o.Matches(word) {
			continue
		}
		if p != nil && p.CanSee(o) {
			return o
		}
		if first == nil {
			first = o
		}
	}
	return first
}

func bindOrEmpty(m message.Message, src message.StateSource) message.Message {
	if m == nil {
		m = message.Literal("")
	}
	return message.Bind(m, src)
}
