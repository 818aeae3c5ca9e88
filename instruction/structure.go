// Package instruction implements the bilingual dosage-instruction engine:
// composing instruction text from structured medication fields, parsing
// free-text edits back into sections plus user content, and keeping the
// English and translated panes in sync.
package instruction

import "strings"

// Marker glyphs anchor the generated lines independently of language.
// Structure detection relies on these literal prefixes, never on the
// localized wording of a line.
const (
	DosageMarker = "ℹ️"
	TimeMarker   = "🕒"
	BulletMarker = "•"
)

// Emoji suffixes for the recognized time-of-day periods.
const (
	MorningEmoji   = "🌅"
	AfternoonEmoji = "☀️"
	EveningEmoji   = "🌆"
	NightEmoji     = "🌙"
)

// Slot indexes the free-text regions a user may type between generated
// sections. The order matches the fixed section order of the block.
type Slot int

const (
	SlotBeforeName Slot = iota
	SlotAfterName
	SlotAfterDosage
	SlotAfterTime
	SlotAfterPrecautions
	slotCount
)

// UserContent holds the user-authored lines for each slot. Lines are kept
// individually so blank lines survive a parse/reassemble round trip.
type UserContent [slotCount][]string

// Clone returns a deep copy so retained content is not shared between
// structures.
func (uc UserContent) Clone() UserContent {
	var out UserContent
	for i := range uc {
		if uc[i] != nil {
			out[i] = append([]string(nil), uc[i]...)
		}
	}
	return out
}

// IsEmpty reports whether no slot holds any line.
func (uc UserContent) IsEmpty() bool {
	for i := range uc {
		if len(uc[i]) > 0 {
			return false
		}
	}
	return true
}

// Structure is the decomposed representation of one instruction block:
// the five generable sections plus the interleaved user content.
type Structure struct {
	MedicationNameLine string
	DosageLine         string
	// DosageTrailing is user text appended on the same line after the
	// dosage sentence's terminating period.
	DosageTrailing    string
	TimeOfDayLine     string
	PrecautionsHeader string
	PrecautionsList   []string

	User UserContent
}

// IsEmpty reports whether the structure holds no sections and no user
// content.
func (s Structure) IsEmpty() bool {
	return s.MedicationNameLine == "" &&
		s.DosageLine == "" &&
		s.DosageTrailing == "" &&
		s.TimeOfDayLine == "" &&
		s.PrecautionsHeader == "" &&
		len(s.PrecautionsList) == 0 &&
		s.User.IsEmpty()
}

// Clone returns a deep copy of the structure.
func (s Structure) Clone() Structure {
	out := s
	out.PrecautionsList = append([]string(nil), s.PrecautionsList...)
	out.User = s.User.Clone()
	return out
}

// Reassemble joins sections and user content in the fixed section order.
// An all-empty structure yields the empty string. Reassembling an
// unmodified parse result reproduces the input text byte for byte.
func Reassemble(s Structure) string {
	lines := make([]string, 0, 8+len(s.PrecautionsList))

	lines = append(lines, s.User[SlotBeforeName]...)
	if s.MedicationNameLine != "" {
		lines = append(lines, s.MedicationNameLine)
	}
	lines = append(lines, s.User[SlotAfterName]...)

	switch {
	case s.DosageLine != "" && s.DosageTrailing != "":
		lines = append(lines, s.DosageLine+" "+s.DosageTrailing)
	case s.DosageLine != "":
		lines = append(lines, s.DosageLine)
	case s.DosageTrailing != "":
		// The generated sentence was cleared but the user's trailing
		// text remains on its own line.
		lines = append(lines, s.DosageTrailing)
	}
	lines = append(lines, s.User[SlotAfterDosage]...)

	if s.TimeOfDayLine != "" {
		lines = append(lines, s.TimeOfDayLine)
	}
	lines = append(lines, s.User[SlotAfterTime]...)

	if s.PrecautionsHeader != "" {
		lines = append(lines, s.PrecautionsHeader)
	}
	lines = append(lines, s.PrecautionsList...)
	lines = append(lines, s.User[SlotAfterPrecautions]...)

	return strings.Join(lines, "\n")
}
