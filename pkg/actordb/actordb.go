// Package actordb is the actor metadata table: actor keys, ids, the object
// each actor needs and the bit layout of its parameters.
package actordb

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Faultbox/z64scene/pkg/errs"
)

//go:embed ActorList.xml
var bundled []byte

// Objects that are always loaded and never need an object list entry.
var alwaysLoaded = map[string]bool{
	"OBJECT_GAMEPLAY_KEEP":         true,
	"OBJECT_GAMEPLAY_FIELD_KEEP":   true,
	"OBJECT_GAMEPLAY_DANGEON_KEEP": true,
}

// IsAlwaysLoaded reports whether an object is resident in every scene.
func IsAlwaysLoaded(objectID string) bool {
	return alwaysLoaded[objectID]
}

// FieldKind is the element a parameter field was declared with.
type FieldKind string

// Field kinds.
const (
	KindProperty    FieldKind = "Property"
	KindFlag        FieldKind = "Flag"
	KindItem        FieldKind = "Item"
	KindCollectible FieldKind = "Collectible"
)

// Targets of a field's bits.
const (
	TargetParams = "Params"
	TargetXRot   = "XRot"
	TargetYRot   = "YRot"
	TargetZRot   = "ZRot"
)

// Field is one masked bit range of an actor's parameters or rotations.
type Field struct {
	Kind   FieldKind
	Name   string
	Mask   uint16
	Target string
}

// Shift is the number of trailing zero bits of the mask.
func (f Field) Shift() int {
	if f.Mask == 0 {
		return 0
	}
	return bits.TrailingZeros16(f.Mask)
}

// Pack places value into the field's mask.
func (f Field) Pack(value int) (uint16, error) {
	if value < 0 {
		return 0, errs.FieldOverflow("%s=%d is negative", f.Name, value)
	}
	shifted := uint64(value) << uint(f.Shift())
	if shifted&^uint64(f.Mask) != 0 {
		return 0, errs.FieldOverflow("%s=0x%X does not fit mask 0x%04X", f.Name, value, f.Mask)
	}
	return uint16(shifted), nil
}

// Preset is a named parameter value.
type Preset struct {
	Params string
	Name   string
}

// Actor describes one actor.
type Actor struct {
	ID       string
	Key      string
	ObjectID string
	Notes    string
	Presets  []Preset
	Fields   []Field
}

// Field finds a field by name.
func (a *Actor) Field(name string) (Field, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Composed is the result of composing field values.
type Composed struct {
	Params uint16
	// Rotations holds the bits targeting XRot, YRot and ZRot.
	Rotations [3]uint16
	// HasRotation marks rotation axes that received field bits.
	HasRotation [3]bool
}

// Compose builds parameter and rotation words from field values keyed by
// field name. base is OR-ed into the parameters first.
func (a *Actor) Compose(base uint16, values map[string]int) (Composed, error) {
	out := Composed{Params: base}
	for name := range values {
		if _, ok := a.Field(name); !ok {
			return out, errs.Reference("actor %s has no field %q", a.ID, name)
		}
	}
	for _, f := range a.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		packed, err := f.Pack(v)
		if err != nil {
			return out, fmt.Errorf("actor %s: %w", a.ID, err)
		}
		switch f.Target {
		case TargetXRot:
			out.Rotations[0] |= packed
			out.HasRotation[0] = true
		case TargetYRot:
			out.Rotations[1] |= packed
			out.HasRotation[1] = true
		case TargetZRot:
			out.Rotations[2] |= packed
			out.HasRotation[2] = true
		default:
			out.Params |= packed
		}
	}
	return out, nil
}

// Table is a read-only actor lookup.
type Table struct {
	actors []*Actor
	byKey  map[string]*Actor
	byID   map[string]*Actor
}

// xmlTable matches the ActorList.xml schema.
type xmlTable struct {
	Actors []xmlActor `xml:"Actor"`
}

type xmlActor struct {
	ID       string       `xml:"ID,attr"`
	Key      string       `xml:"Key,attr"`
	ObjectID string       `xml:"ObjectID,attr"`
	Elements []xmlElement `xml:",any"`
}

type xmlElement struct {
	XMLName xml.Name
	Mask    string `xml:"Mask,attr"`
	Name    string `xml:"Name,attr"`
	Type    string `xml:"Type,attr"`
	Target  string `xml:"Target,attr"`
	Params  string `xml:"Params,attr"`
	Text    string `xml:",chardata"`
}

// Load parses an actor list.
func Load(r io.Reader) (*Table, error) {
	var raw xmlTable
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("actordb: parse: %w", err)
	}

	t := &Table{
		byKey: make(map[string]*Actor, len(raw.Actors)),
		byID:  make(map[string]*Actor, len(raw.Actors)),
	}
	for _, xa := range raw.Actors {
		a := &Actor{ID: xa.ID, Key: strings.ToUpper(xa.Key), ObjectID: xa.ObjectID}
		for _, el := range xa.Elements {
			switch el.XMLName.Local {
			case "Notes":
				a.Notes = strings.TrimSpace(el.Text)
			case "Parameter":
				a.Presets = append(a.Presets, Preset{Params: el.Params, Name: strings.TrimSpace(el.Text)})
			case "Property", "Flag", "Item", "Collectible":
				if el.Name == "None" {
					continue
				}
				f, err := parseField(el)
				if err != nil {
					return nil, fmt.Errorf("actordb: actor %s: %w", xa.ID, err)
				}
				a.Fields = append(a.Fields, f)
			}
		}
		if _, dup := t.byKey[a.Key]; dup {
			return nil, errs.StructuralIndex("actordb: duplicate actor key %s", a.Key)
		}
		t.actors = append(t.actors, a)
		t.byKey[a.Key] = a
		t.byID[a.ID] = a
	}
	return t, nil
}

func parseField(el xmlElement) (Field, error) {
	mask, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(el.Mask), "0x"), 16, 16)
	if err != nil {
		return Field{}, fmt.Errorf("mask %q: %w", el.Mask, err)
	}
	f := Field{Kind: FieldKind(el.XMLName.Local), Mask: uint16(mask), Target: el.Target}
	if f.Target == "" {
		f.Target = TargetParams
	}
	switch f.Kind {
	case KindFlag:
		f.Name = el.Type + " Flag"
	case KindItem:
		f.Name = "Item"
	case KindCollectible:
		f.Name = "Collectible Drop"
	default:
		f.Name = el.Name
	}
	return f, nil
}

// LoadFile parses an actor list from disk.
func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("actordb: %w", err)
	}
	defer file.Close()
	return Load(file)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the bundled actor list, parsed on first use.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Load(bytes.NewReader(bundled))
	})
	return defaultTable, defaultErr
}

// ByKey looks an actor up by its 4-digit hexadecimal key.
func (t *Table) ByKey(key string) (*Actor, bool) {
	a, ok := t.byKey[strings.ToUpper(key)]
	return a, ok
}

// ByID looks an actor up by its ACTOR_ enum name.
func (t *Table) ByID(id string) (*Actor, bool) {
	a, ok := t.byID[id]
	return a, ok
}

// Len returns the number of actors.
func (t *Table) Len() int {
	return len(t.actors)
}

// Actors returns the actors in file order.
func (t *Table) Actors() []*Actor {
	return t.actors
}

// ObjectFor returns the object an actor depends on, empty when the actor is
// unknown or only needs always loaded objects.
func (t *Table) ObjectFor(actorID string) string {
	a, ok := t.byID[actorID]
	if !ok || IsAlwaysLoaded(a.ObjectID) {
		return ""
	}
	return a.ObjectID
}
