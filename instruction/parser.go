package instruction

import (
	"strings"

	"golang.org/x/text/cases"
)

// cursorPos tracks which region of the block the scanner is in. Lines
// that match no generated-section pattern are filed as user content under
// the slot for the current cursor position.
type cursorPos int

const (
	curBeforeName cursorPos = iota
	curAfterName
	curAfterDosage
	curAfterTime
	curPrecautions
)

var cursorSlot = map[cursorPos]Slot{
	curBeforeName:  SlotBeforeName,
	curAfterName:   SlotAfterName,
	curAfterDosage: SlotAfterDosage,
	curAfterTime:   SlotAfterTime,
	curPrecautions: SlotAfterPrecautions,
}

// lineKind tags what a scanned line was recognized as.
type lineKind int

const (
	kindDosage lineKind = iota
	kindTime
	kindBullet
	kindHeader
	kindName
	kindUser
)

// linePredicate decides one lineKind from the trimmed line and the
// current cursor. Predicates run in priority order; the first match wins.
type linePredicate struct {
	kind  lineKind
	match func(trimmed string, cur cursorPos) bool
}

var foldCaser = cases.Fold()

// Parser decomposes instruction text into a Structure. It recognizes the
// precautions header in every supported localized spelling; the glyph
// markers need no localization.
type Parser struct {
	headerSpellings []string
	predicates      []linePredicate
}

// NewParser builds a parser that recognizes the given localized spellings
// of the precautions header. The English spelling is always included.
func NewParser(headerSpellings ...string) *Parser {
	p := &Parser{}
	seen := map[string]bool{}
	for _, s := range append([]string{"Precautions"}, headerSpellings...) {
		folded := foldCaser.String(strings.TrimSpace(s))
		if folded == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		p.headerSpellings = append(p.headerSpellings, folded)
	}

	// Priority order: glyph markers first, bullets only inside the
	// precautions region, then the header, then the medication name
	// while still before it. Everything else is user content.
	p.predicates = []linePredicate{
		{kindDosage, func(t string, _ cursorPos) bool {
			return strings.HasPrefix(t, DosageMarker)
		}},
		{kindTime, func(t string, _ cursorPos) bool {
			return strings.HasPrefix(t, TimeMarker)
		}},
		{kindBullet, func(t string, cur cursorPos) bool {
			return cur == curPrecautions && strings.HasPrefix(t, BulletMarker)
		}},
		{kindHeader, p.isHeader},
		{kindName, func(t string, cur cursorPos) bool {
			return cur == curBeforeName && t != ""
		}},
	}
	return p
}

func (p *Parser) isHeader(trimmed string, _ cursorPos) bool {
	folded := foldCaser.String(trimmed)
	for _, h := range p.headerSpellings {
		if folded == h {
			return true
		}
	}
	return false
}

func (p *Parser) classify(trimmed string, cur cursorPos) lineKind {
	for _, pred := range p.predicates {
		if pred.match(trimmed, cur) {
			return pred.kind
		}
	}
	return kindUser
}

// Parse decomposes text line by line. It is a total function: every line
// lands either in a recognized section or, verbatim, in the user-content
// slot for the current cursor position. Blank lines are preserved as user
// content, never dropped.
func (p *Parser) Parse(text string) Structure {
	var s Structure
	if text == "" {
		return s
	}

	cur := curBeforeName
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch p.classify(trimmed, cur) {
		case kindDosage:
			s.DosageLine, s.DosageTrailing = splitDosageLine(trimmed)
			cur = curAfterDosage
		case kindTime:
			s.TimeOfDayLine = line
			cur = curAfterTime
		case kindBullet:
			s.PrecautionsList = append(s.PrecautionsList, trimmed)
		case kindHeader:
			s.PrecautionsHeader = line
			cur = curPrecautions
		case kindName:
			s.MedicationNameLine = line
			cur = curAfterName
		case kindUser:
			slot := cursorSlot[cur]
			s.User[slot] = append(s.User[slot], line)
		}
	}
	return s
}

// splitDosageLine splits a dosage-marker line at the end of the
// generated sentence: the first period that is followed by a space or
// closes the line. A period inside a token, as in a decimal dose like
// "2.5mg", is not a sentence boundary. The substring up to and including
// the boundary period is the generated sentence; any remainder is user
// text that was typed on the same line. With no boundary the whole line
// is the sentence.
func splitDosageLine(trimmed string) (dosage, trailing string) {
	idx := sentenceEnd(trimmed)
	if idx == -1 {
		return trimmed, ""
	}
	dosage = trimmed[:idx+1]
	trailing = strings.TrimLeft(trimmed[idx+1:], " ")
	return dosage, trailing
}

func sentenceEnd(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' {
			return i
		}
	}
	return -1
}
