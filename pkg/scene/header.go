package scene

import (
	"fmt"

	"github.com/Faultbox/z64scene/pkg/errs"
)

// Slot identifies a header variant of a scene or room.
type Slot int

// Fixed header slots. Cutscene headers follow from 4.
const (
	Main Slot = iota
	ChildNight
	AdultDay
	AdultNight

	firstCutscene
)

// ChildDay is the main header.
const ChildDay = Main

// Cutscene returns the slot of the i-th cutscene header.
func Cutscene(i int) Slot {
	return firstCutscene + Slot(i)
}

// IsCutscene reports whether the slot is a cutscene header.
func (s Slot) IsCutscene() bool {
	return s >= firstCutscene
}

// CutsceneIndex returns the position of a cutscene slot in the cutscene list.
func (s Slot) CutsceneIndex() int {
	return int(s - firstCutscene)
}

func (s Slot) String() string {
	switch s {
	case Main:
		return "child day"
	case ChildNight:
		return "child night"
	case AdultDay:
		return "adult day"
	case AdultNight:
		return "adult night"
	}
	return fmt.Sprintf("cutscene %d", int(s))
}

// AlternateHeaders holds the header variants of a scene or room. A nil fixed
// alternate reuses the previous header and is not emitted.
type AlternateHeaders[T any] struct {
	Main       T   `yaml:"main"`
	ChildNight *T  `yaml:"child_night,omitempty"`
	AdultDay   *T  `yaml:"adult_day,omitempty"`
	AdultNight *T  `yaml:"adult_night,omitempty"`
	Cutscenes  []T `yaml:"cutscenes,omitempty"`
}

// At resolves a slot to its header, nil when the slot is unused.
func (h *AlternateHeaders[T]) At(slot Slot) *T {
	switch slot {
	case Main:
		return &h.Main
	case ChildNight:
		return h.ChildNight
	case AdultDay:
		return h.AdultDay
	case AdultNight:
		return h.AdultNight
	}
	i := slot.CutsceneIndex()
	if i < 0 || i >= len(h.Cutscenes) {
		return nil
	}
	return &h.Cutscenes[i]
}

// HasAlternates reports whether any header besides the main one is present.
func (h *AlternateHeaders[T]) HasAlternates() bool {
	return h.ChildNight != nil || h.AdultDay != nil || h.AdultNight != nil || len(h.Cutscenes) > 0
}

// Slots returns the slots that hold a header, in emission order.
func (h *AlternateHeaders[T]) Slots() []Slot {
	slots := []Slot{Main}
	for _, s := range []Slot{ChildNight, AdultDay, AdultNight} {
		if h.At(s) != nil {
			slots = append(slots, s)
		}
	}
	for i := range h.Cutscenes {
		slots = append(slots, Cutscene(i))
	}
	return slots
}

// AlternateSlots returns every slot of the alternate header table: the three
// fixed alternates followed by one per cutscene header.
func (h *AlternateHeaders[T]) AlternateSlots() []Slot {
	slots := []Slot{ChildNight, AdultDay, AdultNight}
	for i := range h.Cutscenes {
		slots = append(slots, Cutscene(i))
	}
	return slots
}

// HeaderPreset selects the headers an entity belongs to.
type HeaderPreset string

// Header presets.
const (
	AllHeaders         HeaderPreset = "all"
	NonCutsceneHeaders HeaderPreset = "non_cutscene"
	CustomHeaders      HeaderPreset = "custom"
)

// HeaderSettings places an actor, transition actor or entrance in headers.
// The zero value belongs to every header.
type HeaderSettings struct {
	Preset     HeaderPreset `yaml:"preset,omitempty"`
	ChildDay   bool         `yaml:"child_day,omitempty"`
	ChildNight bool         `yaml:"child_night,omitempty"`
	AdultDay   bool         `yaml:"adult_day,omitempty"`
	AdultNight bool         `yaml:"adult_night,omitempty"`
	// Cutscenes lists header indices, starting at 4.
	Cutscenes []int `yaml:"cutscenes,omitempty"`
}

// Includes reports whether the settings select slot.
func (s HeaderSettings) Includes(slot Slot) bool {
	switch s.Preset {
	case "", AllHeaders:
		return true
	case NonCutsceneHeaders:
		return !slot.IsCutscene()
	}

	switch slot {
	case Main:
		return s.ChildDay
	case ChildNight:
		return s.ChildNight
	case AdultDay:
		return s.AdultDay
	case AdultNight:
		return s.AdultNight
	}
	for _, i := range s.Cutscenes {
		if Slot(i) == slot {
			return true
		}
	}
	return false
}

// validate checks custom cutscene indices against the number of cutscene headers.
func (s HeaderSettings) validate(owner string, cutsceneHeaders int) error {
	switch s.Preset {
	case "", AllHeaders, NonCutsceneHeaders:
		return nil
	case CustomHeaders:
	default:
		return errs.Reference("%s: unknown header preset %q", owner, s.Preset)
	}
	for _, i := range s.Cutscenes {
		if i < int(firstCutscene) || i >= int(firstCutscene)+cutsceneHeaders {
			return errs.Reference("%s: cutscene header %d does not exist", owner, i)
		}
	}
	return nil
}
