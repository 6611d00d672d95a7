package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() (north, northwest, xyzzy, exit *Entry, all []*Entry) {
	north = NewEntry("north", Prefix)
	north.AddAbbreviation("n")
	northwest = NewEntry("northwest", Prefix)
	xyzzy = NewEntry("xyzzy", Exact)
	exit = NewEntry("exit", Prefix)
	exit.AddAbbreviation("ex")
	return north, northwest, xyzzy, exit, []*Entry{north, northwest, xyzzy, exit}
}

func TestResolve(t *testing.T) {
	north, northwest, xyzzy, exit, all := testEntries()

	tests := []struct {
		name    string
		token   string
		want    *Entry
		outcome Outcome
	}{
		{name: "prefix collision is ambiguous", token: "nor", outcome: Ambiguous},
		{name: "exact match beats longer prefix", token: "north", want: north, outcome: Found},
		{name: "exact match is case-insensitive", token: "NORTH", want: north, outcome: Found},
		{name: "unique prefix", token: "northw", want: northwest, outcome: Found},
		{name: "full text of longer word", token: "northwest", want: northwest, outcome: Found},
		{name: "abbreviation", token: "n", want: north, outcome: Found},
		{name: "abbreviation upper case", token: "EX", want: exit, outcome: Found},
		{name: "exact-mode word by full text", token: "xyzzy", want: xyzzy, outcome: Found},
		{name: "exact-mode word ignores prefix", token: "xyz", outcome: Unknown},
		{name: "unknown", token: "south", outcome: Unknown},
		{name: "longer than any word", token: "northwesterly", outcome: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.token, all)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.Same(t, tt.want, got.Entry)
		})
	}
}

func TestResolve_ExactShortCircuitsAnyOrder(t *testing.T) {
	north, northwest, _, _, _ := testEntries()

	// The exact hit must win whether it comes before or after the
	// competing prefix candidate.
	for _, order := range [][]*Entry{{north, northwest}, {northwest, north}} {
		got := Resolve("north", order)
		require.Equal(t, Found, got.Outcome)
		assert.Same(t, north, got.Entry)
	}
}

func TestResolve_AbbreviationBypassesPrefix(t *testing.T) {
	// "in" is an abbreviation of "inventory" and a prefix of "inside".
	inventory := NewEntry("inventory", Prefix)
	inventory.AddAbbreviation("in")
	inside := NewEntry("inside", Prefix)

	got := Resolve("in", []*Entry{inside, inventory})
	require.Equal(t, Found, got.Outcome)
	assert.Same(t, inventory, got.Entry)
}

func TestResolve_EmptyVocabulary(t *testing.T) {
	got := Resolve("look", nil)
	assert.Equal(t, Unknown, got.Outcome)
	assert.Nil(t, got.Entry)
}

func TestTerm(t *testing.T) {
	north, northwest, _, _, _ := testEntries()
	other := NewEntry("north", Prefix)

	term := NewTerm("direction")
	term.Add(north, north, nil)
	assert.Equal(t, 1, term.Len())
	assert.True(t, term.Contains(north))
	assert.False(t, term.Contains(northwest))
	assert.False(t, term.Contains(other), "identity is by reference, not text")
	assert.False(t, term.Contains(nil))

	var missing *Term
	assert.False(t, missing.Contains(north))
}

func TestEntry_LowercaseAndAbbreviations(t *testing.T) {
	e := NewEntry("Lamp", Prefix)
	assert.Equal(t, "lamp", e.Text())
	assert.Equal(t, "lamp", e.String())

	e.AddAbbreviation("L")
	e.AddAbbreviation("l")
	assert.Equal(t, []string{"l"}, e.Abbreviations())
	assert.True(t, e.IsAbbreviation("L"))
}

func TestVocabulary_Word(t *testing.T) {
	v := New()
	go1, err := v.Word("Go", Prefix)
	require.NoError(t, err)
	go2, err := v.Word("go", Prefix)
	require.NoError(t, err)
	assert.Same(t, go1, go2)
	assert.Equal(t, 1, v.Len())

	_, err = v.Word("go", Exact)
	assert.True(t, errors.Is(err, ErrModeConflict))

	got, ok := v.Lookup("GO")
	assert.True(t, ok)
	assert.Same(t, go1, got)

	res := v.Resolve("g")
	assert.Equal(t, Found, res.Outcome)
	assert.Same(t, go1, res.Entry)
}

func TestVocabulary_AddSameText(t *testing.T) {
	v := New()
	first := NewEntry("take", Prefix)
	second := NewEntry("Take", Prefix)
	v.Add(first, nil, second)

	require.Equal(t, 2, v.Len())
	assert.NotSame(t, first, second)
	assert.Equal(t, []*Entry{first, second}, v.Entries())

	got, ok := v.Lookup("take")
	require.True(t, ok)
	assert.Same(t, first, got)

	res := v.Resolve("TAKE")
	assert.Equal(t, Found, res.Outcome)
	assert.Same(t, first, res.Entry, "exact hit returns the earliest entry")

	assert.Equal(t, Ambiguous, v.Resolve("ta").Outcome, "both entries are prefix candidates")

	w, err := v.Word("take", Prefix)
	require.NoError(t, err)
	assert.Same(t, first, w)
	assert.Equal(t, 2, v.Len())
}
