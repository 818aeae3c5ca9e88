package instruction

import (
	"reflect"
	"strings"
	"testing"
)

func testParser() *Parser {
	return NewParser("Voorsorgmaatreëls", "Izexwayiso", "Izilumkiso")
}

func TestParseEmptyInput(t *testing.T) {
	s := testParser().Parse("")
	if !s.IsEmpty() {
		t.Fatalf("expected all-empty structure, got %+v", s)
	}
}

func TestParseFullBlock(t *testing.T) {
	text := strings.Join([]string{
		"Paracetamol",
		"ℹ️ Take 500mg tablet three times daily every 8 hours.",
		"🕒 morning 🌅, afternoon ☀️, evening 🌆",
		"Precautions",
		"• Take with food",
		"• Avoid alcohol",
	}, "\n")

	s := testParser().Parse(text)

	if s.MedicationNameLine != "Paracetamol" {
		t.Errorf("name line = %q", s.MedicationNameLine)
	}
	if s.DosageLine != "ℹ️ Take 500mg tablet three times daily every 8 hours." {
		t.Errorf("dosage line = %q", s.DosageLine)
	}
	if s.DosageTrailing != "" {
		t.Errorf("unexpected trailing text %q", s.DosageTrailing)
	}
	if s.TimeOfDayLine != "🕒 morning 🌅, afternoon ☀️, evening 🌆" {
		t.Errorf("time line = %q", s.TimeOfDayLine)
	}
	if s.PrecautionsHeader != "Precautions" {
		t.Errorf("header = %q", s.PrecautionsHeader)
	}
	want := []string{"• Take with food", "• Avoid alcohol"}
	if !reflect.DeepEqual(s.PrecautionsList, want) {
		t.Errorf("precautions = %v, want %v", s.PrecautionsList, want)
	}
	if !s.User.IsEmpty() {
		t.Errorf("unexpected user content %+v", s.User)
	}
}

func TestParseDosageLineSplit(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantDosage   string
		wantTrailing string
	}{
		{
			name:         "no trailing text",
			line:         "ℹ️ Take 1 tablet daily.",
			wantDosage:   "ℹ️ Take 1 tablet daily.",
			wantTrailing: "",
		},
		{
			name:         "trailing user text after period",
			line:         "ℹ️ Take 1 tablet daily. With a full glass of water",
			wantDosage:   "ℹ️ Take 1 tablet daily.",
			wantTrailing: "With a full glass of water",
		},
		{
			name:         "no period keeps whole line",
			line:         "ℹ️ Take 1 tablet daily",
			wantDosage:   "ℹ️ Take 1 tablet daily",
			wantTrailing: "",
		},
		{
			name:         "decimal dose is not a sentence boundary",
			line:         "ℹ️ Take 2.5mg tablet daily.",
			wantDosage:   "ℹ️ Take 2.5mg tablet daily.",
			wantTrailing: "",
		},
		{
			name:         "decimal dose with trailing user text",
			line:         "ℹ️ Take 2.5mg tablet daily. with water",
			wantDosage:   "ℹ️ Take 2.5mg tablet daily.",
			wantTrailing: "with water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testParser().Parse("Aspirin\n" + tt.line)
			if s.DosageLine != tt.wantDosage {
				t.Errorf("dosage = %q, want %q", s.DosageLine, tt.wantDosage)
			}
			if s.DosageTrailing != tt.wantTrailing {
				t.Errorf("trailing = %q, want %q", s.DosageTrailing, tt.wantTrailing)
			}
		})
	}
}

func TestParseUserContentSlots(t *testing.T) {
	text := strings.Join([]string{
		"note before anything",
		"Aspirin",
		"after the name",
		"ℹ️ Take 1 tablet daily.",
		"",
		"between dosage and time",
		"🕒 morning 🌅",
		"after the time line",
		"Precautions",
		"• With food",
		"closing note",
	}, "\n")

	s := testParser().Parse(text)

	if got := s.User[SlotBeforeName]; !reflect.DeepEqual(got, []string{"note before anything"}) {
		t.Errorf("before-name slot = %v", got)
	}
	if got := s.User[SlotAfterName]; !reflect.DeepEqual(got, []string{"after the name"}) {
		t.Errorf("after-name slot = %v", got)
	}
	if got := s.User[SlotAfterDosage]; !reflect.DeepEqual(got, []string{"", "between dosage and time"}) {
		t.Errorf("after-dosage slot = %v (blank lines must be preserved)", got)
	}
	if got := s.User[SlotAfterTime]; !reflect.DeepEqual(got, []string{"after the time line"}) {
		t.Errorf("after-time slot = %v", got)
	}
	if got := s.User[SlotAfterPrecautions]; !reflect.DeepEqual(got, []string{"closing note"}) {
		t.Errorf("after-precautions slot = %v", got)
	}
}

func TestParseBulletOnlyAfterHeader(t *testing.T) {
	// A bullet-looking line before any precautions header is user
	// content, resolved by cursor position rather than by content.
	text := strings.Join([]string{
		"Aspirin",
		"• not a precaution",
		"Precautions",
		"• a real precaution",
	}, "\n")

	s := testParser().Parse(text)

	if got := s.User[SlotAfterName]; !reflect.DeepEqual(got, []string{"• not a precaution"}) {
		t.Errorf("pre-header bullet should be user content, got %v", got)
	}
	if !reflect.DeepEqual(s.PrecautionsList, []string{"• a real precaution"}) {
		t.Errorf("precautions = %v", s.PrecautionsList)
	}
}

func TestParseLocalizedHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"english", "Precautions"},
		{"english lowercase", "precautions"},
		{"afrikaans", "Voorsorgmaatreëls"},
		{"afrikaans upper", "VOORSORGMAATREËLS"},
		{"zulu", "Izexwayiso"},
		{"xhosa", "izilumkiso"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testParser().Parse("Aspirin\n" + tt.header + "\n• item")
			if s.PrecautionsHeader != tt.header {
				t.Errorf("header not recognized, got %q", s.PrecautionsHeader)
			}
			if len(s.PrecautionsList) != 1 {
				t.Errorf("bullet after localized header not captured: %v", s.PrecautionsList)
			}
		})
	}
}

func TestParseIsTotal(t *testing.T) {
	// Any input must decompose without error; unrecognized lines land in
	// user content.
	inputs := []string{
		"just some text\nwith lines",
		"\n\n\n",
		"ℹ️",
		"🕒",
		"•",
		"ℹ️ no period here\nℹ️ second marker line.",
	}
	for _, in := range inputs {
		_ = testParser().Parse(in)
	}
}

func TestParseReassembleRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "generated block only",
			text: "Paracetamol\nℹ️ Take 500mg tablet three times daily.\n🕒 morning 🌅\nPrecautions\n• Take with food",
		},
		{
			name: "user content interleaved",
			text: "pharmacist note\nParacetamol\nℹ️ Take 500mg tablet three times daily.\n\nextra guidance\n🕒 night 🌙\nPrecautions\n• Take with food\nfinal remark",
		},
		{
			name: "free text only",
			text: "Aspirin\nnothing generated here\n\nat all",
		},
		{
			name: "trailing text on dosage line",
			text: "Aspirin\nℹ️ Take 1 tablet daily. with water",
		},
		{
			name: "decimal dose",
			text: "Aspirin\nℹ️ Take 2.5mg tablet daily.",
		},
		{
			name: "indented time and header lines",
			text: "Aspirin\nℹ️ Take 1 tablet daily.\n  🕒 morning 🌅\n\tPrecautions\n• With food",
		},
	}

	p := testParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := p.Parse(tt.text)
			got := Reassemble(s)
			if got != tt.text {
				t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, tt.text)
			}

			// Parsing the reassembled text must reproduce the same
			// structure.
			again := p.Parse(got)
			if !reflect.DeepEqual(again, s) {
				t.Errorf("parse(reassemble(s)) != s:\n got: %+v\nwant: %+v", again, s)
			}
		})
	}
}
