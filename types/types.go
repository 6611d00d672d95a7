// Package types defines the shared value types for the twoword engine:
// tagged property values and the property bags built from them.
package types

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBool
	KindInt
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindRef:
		return "ref"
	default:
		return "none"
	}
}

// Value is a tagged property value: a string, bool, int, or a reference
// to some world entity.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int
	ref  any
}

// StringVal wraps a string.
func StringVal(s string) Value { return Value{kind: KindString, s: s} }

// BoolVal wraps a bool.
func BoolVal(b bool) Value { return Value{kind: KindBool, b: b} }

// IntVal wraps an int.
func IntVal(i int) Value { return Value{kind: KindInt, i: i} }

// RefVal wraps a reference to an entity (a room, object, vocabulary entry...).
func RefVal(r any) Value { return Value{kind: KindRef, ref: r} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBool returns the bool held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the int held by v.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsRef returns the reference held by v.
func (v Value) AsRef() (any, bool) { return v.ref, v.kind == KindRef }

// String renders v for message substitution.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindRef:
		return fmt.Sprint(v.ref)
	default:
		return ""
	}
}

var (
	// ErrNoProperty is returned when a property name is absent.
	ErrNoProperty = errors.New("no such property")
	// ErrWrongKind is returned when a property holds a different variant.
	ErrWrongKind = errors.New("property has wrong kind")
	// ErrPropertySet is returned when a set-once property is written twice.
	ErrPropertySet = errors.New("property already set")
)

// PropertyError describes a failed property access.
type PropertyError struct {
	Name string
	Want Kind // zero unless Err is ErrWrongKind
	Got  Kind
	Err  error
}

func (e *PropertyError) Error() string {
	if errors.Is(e.Err, ErrWrongKind) {
		return fmt.Sprintf("property %q: want %s, got %s", e.Name, e.Want, e.Got)
	}
	return fmt.Sprintf("property %q: %v", e.Name, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }

// Props is a string-keyed bag of tagged values. The zero value is an
// empty, freely writable bag.
type Props struct {
	vals    map[string]Value
	setOnce bool
}

// NewOnceProps returns a bag whose properties may each be set only once.
func NewOnceProps() *Props {
	return &Props{setOnce: true}
}

// Set stores v under name.
func (p *Props) Set(name string, v Value) error {
	if p.vals == nil {
		p.vals = map[string]Value{}
	}
	if _, ok := p.vals[name]; ok && p.setOnce {
		return &PropertyError{Name: name, Err: ErrPropertySet}
	}
	p.vals[name] = v
	return nil
}

// Has reports whether name is present.
func (p *Props) Has(name string) bool {
	_, ok := p.vals[name]
	return ok
}

// Get returns the value stored under name.
func (p *Props) Get(name string) (Value, error) {
	v, ok := p.vals[name]
	if !ok {
		return Value{}, &PropertyError{Name: name, Err: ErrNoProperty}
	}
	return v, nil
}

// GetString returns the string stored under name.
func (p *Props) GetString(name string) (string, error) {
	v, err := p.typed(name, KindString)
	return v.s, err
}

// GetBool returns the bool stored under name.
func (p *Props) GetBool(name string) (bool, error) {
	v, err := p.typed(name, KindBool)
	return v.b, err
}

// GetInt returns the int stored under name.
func (p *Props) GetInt(name string) (int, error) {
	v, err := p.typed(name, KindInt)
	return v.i, err
}

// GetRef returns the reference stored under name.
func (p *Props) GetRef(name string) (any, error) {
	v, err := p.typed(name, KindRef)
	return v.ref, err
}

// Names returns the property names in sorted order.
func (p *Props) Names() []string {
	names := make([]string, 0, len(p.vals))
	for name := range p.vals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Props) typed(name string, want Kind) (Value, error) {
	v, err := p.Get(name)
	if err != nil {
		return Value{}, err
	}
	if v.kind != want {
		return Value{}, &PropertyError{Name: name, Want: want, Got: v.kind, Err: ErrWrongKind}
	}
	return v, nil
}
