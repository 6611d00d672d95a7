package story

import (
	"github.com/nathoo/twoword/engine/events"
	"github.com/nathoo/twoword/engine/message"
	"github.com/nathoo/twoword/engine/vocab"
	"github.com/nathoo/twoword/engine/world"
)

func init() {
	Register("demo", Demo)
}

// Demo builds the sample story: a balcony, a two-part big room, a locked
// ballroom, and a magic workshop reached with xyzzy.
func Demo(b *Builder) error {
	e := b.Engine()
	out := e.Out
	w := e.World
	say := func(m message.Message, args ...any) error {
		return message.Println(m, out, args...)
	}

	b.NoiseTerm("a", "an", "the", "and", "it", "that", "this", "to", "at", "with", "room")

	// Special messages.
	mDontUnderstand1 := b.Cycle(
		b.Template(`I don't know how to "%1".`),
		b.Template(`I don't understand "%1".`))
	mDontUnderstand2 := b.Cycle(
		b.Template(`I don't know how to "%1 %2".`),
		b.Template(`I don't understand "%1 %2".`))
	b.Special("word.unknown", b.Template("I don't understand %1."))
	b.Special("word.ambiguous", b.Template("I have more than one way to interpret %1."))
	b.Special("command.allnoise", b.Cycle(
		b.Msg("That was noise to me."),
		b.Msg("Did you want me to do something?")))
	b.Special("command.toolong", b.Cycle(
		b.Msg("I only understand one and two word commands."),
		b.Msg("You have to keep it brief.")))
	b.Special("command.unknown.one", mDontUnderstand1)
	b.Special("command.unknown.two", mDontUnderstand2)
	b.Prompt("? ")

	// quit, kill, magic.
	vQuit := b.Term("quit", "quit", "exit")
	b.Word("exit", vocab.Prefix, "ex")
	vKill := b.Term("kill", "kill", "execute")
	vMagic := b.Term("magic")
	vMagic.Add(b.Word("xyzzy", vocab.Exact))

	mFinal := b.Concat(b.Msg("Hope you enjoyed your game."), b.Msg(" Come back and play again."))
	b.Rule(vQuit, nil, 0, nil, func(_, _ *vocab.Entry) error {
		e.SetExit(true)
		return say(mFinal)
	})

	mKill := b.Cycle(
		b.Concat(b.Cycle(b.Msg("What exactly is it"), b.Msg("I don't know what")),
			b.Template(" you want me to %1?")),
		b.Msg("Why do you persist in asking that?"))
	b.Rule(vKill, nil, 0, nil, func(w1, _ *vocab.Entry) error {
		return say(mKill, w1)
	})

	vKillStuff := b.Term("killstuff", "gold", "silver", "floor", "wall")
	mKillStuff := b.Cycle(
		b.Template("How exactly do you propose that I %1 the %2?"),
		b.Template("Are you so unhappy with the %2 that you want me to %1 it?"))
	b.Rule(vKill, vKillStuff, 0, nil, func(w1, w2 *vocab.Entry) error {
		return say(mKillStuff, w1, w2)
	})

	// Rooms and movement.
	vMove := b.Term("move", "move", "go", "proceed", "walk")
	b.Word("go", vocab.Prefix, "g")
	vNorth := b.Term("north", "north")
	b.Word("north", vocab.Prefix, "n")
	vSouth := b.Term("south", "south")
	b.Word("south", vocab.Prefix, "s")
	vEast := b.Term("east", "east")
	b.Word("east", vocab.Prefix, "e")
	vEastIn := b.Term("eastorin", "east", "in")
	vWest := b.Term("west", "west")
	b.Word("west", vocab.Prefix, "w")
	vWestOutExit := b.Term("westoutorexit", "west", "out", "exit")
	vDirect := b.Term("direction", "north", "south", "east", "west", "in", "out", "exit")
	vLook := b.Term("look", "look")
	vAround := b.Term("around", "around")

	rBalcony := b.Room("balcony",
		b.Msg("You are on a balcony facing west, overlooking a beautiful garden. The only exit from the balcony is behind you."),
		b.Msg("You are on the balcony"))
	rNorth := b.Room("northroom",
		b.Msg("You are in the north end of the Big Room. The room extends south from here. There is an exit to the outside to the west."),
		b.Msg("You are in the north end of the Big Room."))
	rSouth := b.Room("southroom",
		b.Msg("You are in the south end of the Big Room. The room extends north from here."),
		b.Msg("You are in the south end of the Big Room."))
	rMagic := b.Room("magicroom",
		b.Msg("You are in the magic workshop. There are no doors in any of the walls."),
		b.Msg("You are in the magic workshop."))
	rBallroom := b.Room("ballroom",
		b.Msg("You have entered the ballroom. The room has a high ceiling with two magnificent crystal chandeliers which illuminate the room. "+
			"The floor is a polished wooden parquet with flowers inlaid around the edge. "+
			"The north wall is lined with mirrors while the south wall has large windows which look out on a beautiful garden. "),
		b.Msg("You are in the ballroom."))
	// Somewhere to keep things that aren't anywhere else.
	rNowhere := b.Room("nowhere", nil, nil)

	b.Path(vEastIn, rBalcony, rNorth)
	b.Path(vWestOutExit, rNorth, rBalcony)
	b.Path(vSouth, rNorth, rSouth)
	b.Path(vNorth, rSouth, rNorth)

	p := b.Player("You")
	lookAround := func(_, _ *vocab.Entry) error { return p.LookAround(out) }
	b.Rule(vLook, nil, 0, nil, lookAround)
	b.Rule(vLook, vAround, 0, nil, lookAround)

	b.Rule(vMagic, nil, 0, nil, func(w1, _ *vocab.Entry) error {
		switch p.Location() {
		case rSouth:
			p.ApportTo(rMagic)
		case rMagic:
			p.ApportTo(rSouth)
		default:
			// Act as if the word meant nothing here.
			return say(mDontUnderstand1, w1)
		}
		return p.LookAround(out)
	})

	// Objects.
	vExamine := b.Term("examine", "examine")
	vInventory := b.Term("inventory", "inventory")
	vGet := b.Term("get", "get")
	vDrop := b.Term("drop", "drop")
	vMessage := b.Term("message", "message", "paper")
	vCoin := b.Term("coin", "coin", "goldcoin")
	vWand := b.Term("magicwand", "wand", "magicwand", "woodenwand")
	vKey := b.Term("key", "key", "doorkey")
	vDoor := b.Term("door", "door")
	vObjects := b.Term("objects", "wand", "magicwand", "woodenwand",
		"message", "paper", "coin", "goldcoin", "key", "doorkey")
	vAllObjects := b.Term("all objects", "wand", "magicwand", "woodenwand",
		"message", "paper", "coin", "goldcoin", "key", "doorkey", "door")
	vLock := b.Term("lock", "lock")
	vUnlock := b.Term("unlock", "unlock")
	vLockUnlock := b.Term("lockunlock", "lock", "unlock")
	vRead := b.Term("read", "read")
	vWave := b.Term("wave", "wave")

	iPaper := b.Object("paper", vMessage,
		b.Msg("a piece of paper"),
		b.Msg("There is a piece of paper here."),
		b.Msg("It's a piece of paper with some writing on it."))
	iCoin := b.Object("coin", vCoin,
		b.Msg("a gold coin"),
		b.Msg("There is a gold coin here."),
		b.Msg("It's a US golden double eagle."))
	iWand := b.Object("magicwand", vWand,
		b.Msg("a wooden wand"),
		b.Msg("There is a wooden wand here."),
		b.Msg("It's a beautifully carved wooden wand make of alder."))
	iKey := b.Object("key", vKey,
		b.Msg("a key"),
		b.Msg("There is a key here."),
		b.Msg("It's a door key. Nothing special."))
	doorLong := b.Select(
		b.Msg("It is a solid oaken six panel door. It appears to be locked."),
		b.Msg("It is a fine oaken door that is standing open."))
	iDoorSouth := b.Object("south room door", vDoor,
		b.Msg("a door"),
		b.Select(b.Msg("There is a door in the east wall. It is closed."),
			b.Msg("There is an open door in the east wall.")),
		doorLong)
	iDoorBallroom := b.Object("ballroom door", vDoor,
		b.Msg("a door"),
		b.Select(b.Msg("There is a door in the west wall. It is closed."),
			b.Msg("There is an open door in the west wall.")),
		doorLong)

	mAlreadyCarrying := b.Template("You are already carrying %1.")
	mNowCarrying := b.Template("You are now carrying %1.")
	mCantFind := b.Template("I can't find %1 here.")
	mDropped := b.Template("You have dropped %1.")
	mNotCarrying := b.Template("You are not carrying %1.")
	mNotCarryingAnything := b.Msg("You are not carrying anything.")
	mCarrying1 := b.Template("You are carrying %1.")
	mCarrying2 := b.Template("You are carrying %1 and %2.")

	b.Rule(vGet, vObjects, 0, nil, func(_, w2 *vocab.Entry) error {
		obj := w.FindNear(p, w2)
		name, err := obj.InventoryText()
		if err != nil {
			return err
		}
		here := p.Location()
		switch {
		case p.Carries(obj):
			return say(mAlreadyCarrying, name)
		case here.Contains(obj):
			p.Add(obj)
			return say(mNowCarrying, name)
		default:
			return say(mCantFind, w2)
		}
	})

	b.Rule(vDrop, vObjects, 0, nil, func(_, w2 *vocab.Entry) error {
		obj := w.FindNear(p, w2)
		if !p.Carries(obj) {
			return say(mNotCarrying, w2)
		}
		name, err := obj.InventoryText()
		if err != nil {
			return err
		}
		p.Location().Add(obj)
		return say(mDropped, name)
	})

	b.Rule(vExamine, vAllObjects, 0, nil, func(_, w2 *vocab.Entry) error {
		obj := w.FindNear(p, w2)
		if p.CanSee(obj) {
			return say(obj.Long)
		}
		name, err := obj.InventoryText()
		if err != nil {
			return err
		}
		return say(mNotCarrying, name)
	})

	b.Rule(vInventory, nil, 0, nil, func(_, _ *vocab.Entry) error {
		return inventory(out, p, mNotCarryingAnything, mCarrying1, mCarrying2)
	})

	// Waving the wand: the later rules are more specific and win on priority.
	mNoWave := b.Concat(
		b.Cycle(b.Msg(""), b.Msg("There's a swishing sound. ")),
		b.Cycle(b.Msg("Nothing happens."),
			b.Template("Little sparks follow the %1."),
			b.Msg("There's a bump, but nothing else happens.")))
	mNoWand := b.Template("You don't have a %1.")
	mKeyAppears := b.Msg("A key appears on the floor.")
	mKeyDisappears := b.Msg("The key on the floor disappears.")

	b.Rule(vWave, vWand, 0, nil, func(_, w2 *vocab.Entry) error {
		return say(mNoWand, w2)
	})
	holdingWand := func(_, _ *vocab.Entry) (bool, error) { return p.Carries(iWand), nil }
	b.Rule(vWave, vWand, 10, holdingWand, func(_, w2 *vocab.Entry) error {
		return say(mNoWave, w2)
	})
	b.Rule(vWave, vWand, 20, func(_, _ *vocab.Entry) (bool, error) {
		return p.Carries(iWand) && p.Location() == rSouth, nil
	}, func(_, w2 *vocab.Entry) error {
		switch {
		case rSouth.Contains(iKey):
			rNowhere.Add(iKey)
			return say(mKeyDisappears)
		case rNowhere.Contains(iKey):
			rSouth.Add(iKey)
			return say(mKeyAppears)
		default:
			return say(mNoWave, w2)
		}
	})

	// The two sides of the ballroom door share a state: 0 locked, 1 open.
	mDoorNoChange := b.Select(b.Msg("The door is already locked."), b.Msg("The door is already unlocked."))
	mDoorChange := b.Select(b.Msg("The door is now locked."), b.Msg("The door is now unlocked."))
	mNotHoldingKey := b.Template("You need the key to %1 the door.")
	mNeedKey := b.Template("You need a key to %1 the door.")
	mWhatToLock := b.Template("I don't see anything here to %1.")
	lockUnlock := func(w1, _ *vocab.Entry) error {
		here := p.Location()
		switch {
		case here != rSouth && here != rBallroom:
			return say(mWhatToLock, w1)
		case p.Carries(iKey):
			state := iDoorBallroom.State()
			if (vLock.Contains(w1) && state == 1) || (vUnlock.Contains(w1) && state == 0) {
				state = 1 - state
				iDoorBallroom.SetState(state)
				iDoorSouth.SetState(state)
				return message.AltPrintln(mDoorChange, state, out)
			}
			return message.AltPrintln(mDoorNoChange, state, out)
		case here.Contains(iKey):
			return say(mNotHoldingKey, w1)
		default:
			return say(mNeedKey, w1)
		}
	}
	b.Rule(vLockUnlock, nil, 0, nil, lockUnlock)
	b.Rule(vLockUnlock, vDoor, 0, nil, lockUnlock)

	mDoorLocked := b.Template("You can't go %1. The door is locked.")
	mCantMove := b.Template("I don't know how to %1 %2 from here.")
	b.Rule(vMove, vDirect, 0, nil, func(w1, w2 *vocab.Entry) error {
		var through *world.Object
		var to *world.Room
		switch {
		case p.Location() == rSouth && vEast.Contains(w2):
			through, to = iDoorSouth, rBallroom
		case p.Location() == rBallroom && vWest.Contains(w2):
			through, to = iDoorBallroom, rSouth
		}
		switch {
		case through != nil && through.State() != 1:
			return say(mDoorLocked, w2)
		case through != nil:
			p.ApportTo(to)
		case !p.MoveOnPath(w2):
			return say(mCantMove, w1, w2)
		}
		return p.LookAround(out)
	})

	mPaperSays := b.Template(`The %1 says, "Enjoy your game."`)
	mNoPaper := b.Template("You don't have a %1 to read.")
	b.Rule(vRead, vMessage, 0, nil, func(_, w2 *vocab.Entry) error {
		if p.Carries(iPaper) {
			return say(mPaperSays, w2)
		}
		return say(mNoPaper, w2)
	})

	// Starting positions.
	rSouth.Add(iDoorSouth)
	rBallroom.Add(iDoorBallroom)
	rNorth.Add(iCoin)
	rBallroom.Add(iPaper)
	rMagic.Add(iWand)
	rNowhere.Add(iKey)

	mWelcome := b.Msg("Welcome to your adventure. Have a good game.")
	b.On(events.GameInit, "demo.start", func(*events.Event) error {
		p.ApportTo(rBalcony)
		if err := say(mWelcome); err != nil {
			return err
		}
		out.Newline()
		if err := p.LookAround(out); err != nil {
			return err
		}
		out.StartLine()
		return nil
	})
	return nil
}

// inventory lists what p carries: one or two items in a sentence,
// more as a comma-separated list.
func inventory(out message.Sink, p *world.Player, none, one, two message.Message) error {
	items := p.Contents()
	names := make([]any, len(items))
	for i, o := range items {
		s, err := o.InventoryText()
		if err != nil {
			return err
		}
		names[i] = s
	}
	switch len(names) {
	case 0:
		return message.Println(none, out)
	case 1:
		return message.Println(one, out, names[0])
	case 2:
		return message.Println(two, out, names[0], names[1])
	}
	out.Print("You are carrying ")
	for i, n := range names {
		switch {
		case i == len(names)-1:
			out.Print(", and ")
		case i > 0:
			out.Print(", ")
		}
		out.Print(n.(string))
	}
	out.Println(".")
	return nil
}
