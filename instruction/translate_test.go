package instruction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mediscript/instructions-api/vocabulary/entities"
)

func TestTranslateEndToEnd(t *testing.T) {
	f := Fields{
		Name:        "Paracetamol, oral",
		Dosage:      "500mg tablet",
		Frequency:   "Three times daily",
		Interval:    "Every 8 hours",
		TimeOfDay:   "morning, afternoon, evening",
		Precautions: []string{"Take with food"},
	}
	english := Reassemble(Compose(f, UserContent{}, ""))

	vocab := NewMockVocabBuilder().
		WithStatic(entities.StaticKeyTake, "zu", "Thatha").
		WithStatic(entities.StaticKeyPrecautionsHeader, "zu", "Izexwayiso").
		WithTerm(entities.CategoryDosage, "500mg tablet", "zu", "ithebulethi ye-500mg").
		WithTerm(entities.CategoryFrequency, "Three times daily", "zu", "kathathu ngosuku").
		WithTerm(entities.CategoryIntervals, "Every 8 hours", "zu", "njalo emahoreni ayi-8").
		WithTerm(entities.CategoryTimeOfDay, "morning", "zu", "ekuseni").
		WithTerm(entities.CategoryTimeOfDay, "afternoon", "zu", "emini").
		WithTerm(entities.CategoryTimeOfDay, "evening", "zu", "kusihlwa").
		WithTerm(entities.CategoryPrecautions, "Take with food", "zu", "Thatha nokudla").
		Build()

	got, err := Translate(context.Background(), english, f, "zu", vocab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	want := strings.Join([]string{
		"Paracetamol",
		"ℹ️ Thatha ithebulethi ye-500mg kathathu ngosuku njalo emahoreni ayi-8.",
		"🕒 ekuseni 🌅, emini ☀️, kusihlwa 🌆",
		"Izexwayiso",
		"• Thatha nokudla",
	}, "\n")
	if got != want {
		t.Errorf("translated block:\n got: %q\nwant: %q", got, want)
	}

	// Line order must be unchanged.
	if len(strings.Split(got, "\n")) != len(strings.Split(english, "\n")) {
		t.Error("line count changed during substitution")
	}
}

func TestTranslateEnglishTargetIsIdentity(t *testing.T) {
	vocab := NewMockVocabBuilder().Build()
	f := Fields{Name: "Aspirin", Dosage: "1 tablet", Frequency: "Daily"}
	english := Reassemble(Compose(f, UserContent{}, ""))

	got, err := Translate(context.Background(), english, f, "en", vocab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != english {
		t.Errorf("english target changed the text: %q", got)
	}
	if vocab.LookupCount() != 0 {
		t.Errorf("english target issued %d lookups", vocab.LookupCount())
	}
}

func TestTranslateFirstOccurrenceOnly(t *testing.T) {
	// The dosage value also appears inside a user-added sentence.
	// Substitution is literal first-occurrence, so exactly the first of
	// the two occurrences changes.
	f := Fields{Name: "Aspirin", Dosage: "1 tablet", Frequency: "Daily"}
	var user UserContent
	user[SlotAfterDosage] = []string{"Note: 1 tablet should be enough"}
	english := Reassemble(Compose(f, user, ""))

	if strings.Count(english, "1 tablet") != 2 {
		t.Fatalf("test setup: want the value twice in %q", english)
	}

	vocab := NewMockVocabBuilder().
		WithTerm(entities.CategoryDosage, "1 tablet", "af", "1 tablet (af)").
		Build()

	got, err := Translate(context.Background(), english, f, "af", vocab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if strings.Count(got, "1 tablet (af)") != 1 {
		t.Errorf("expected exactly one substitution, got %q", got)
	}
	first := strings.Index(got, "1 tablet (af)")
	remaining := strings.Index(got[first+len("1 tablet (af)"):], "1 tablet")
	if remaining == -1 {
		t.Errorf("second occurrence should survive untouched: %q", got)
	}
}

func TestTranslateVerbCasePreserving(t *testing.T) {
	f := Fields{Name: "Aspirin", Dosage: "1 tablet", Frequency: "Daily"}
	english := Reassemble(Compose(f, UserContent{}, ""))

	vocab := NewMockVocabBuilder().
		WithStatic(entities.StaticKeyTake, "af", "neem").
		Build()

	got, err := Translate(context.Background(), english, f, "af", vocab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(got, "ℹ️ Neem 1 tablet") {
		t.Errorf("start-of-sentence verb should keep its leading capital: %q", got)
	}
}

func TestTranslateLookupFailure(t *testing.T) {
	f := Fields{Name: "Aspirin", Dosage: "1 tablet", Frequency: "Daily"}
	english := Reassemble(Compose(f, UserContent{}, ""))

	vocab := NewMockVocabBuilder().WithError(errors.New("tables not loaded")).Build()
	if _, err := Translate(context.Background(), english, f, "af", vocab); err == nil {
		t.Fatal("expected an error when lookups fail")
	}
}

func TestTranslateUnknownTermFallsBack(t *testing.T) {
	// A term with no mapping comes back unchanged from the lookup, so
	// the text keeps the English value.
	f := Fields{Name: "Aspirin", Dosage: "1 tablet", Frequency: "Daily"}
	english := Reassemble(Compose(f, UserContent{}, ""))

	vocab := NewMockVocabBuilder().Build()
	got, err := Translate(context.Background(), english, f, "af", vocab)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(got, "1 tablet daily.") {
		t.Errorf("unmapped terms should remain: %q", got)
	}
}
