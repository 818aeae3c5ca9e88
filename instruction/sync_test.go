package instruction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mediscript/instructions-api/vocabulary/entities"
)

func generatedController(t *testing.T, vocab *MockVocab, lang string) *Controller {
	t.Helper()
	ctx := context.Background()
	c := NewController(vocab, lang)
	c.ApplyFieldEdit(ctx, FieldName, "Paracetamol, oral")
	c.ApplyFieldEdit(ctx, FieldDosage, "500mg tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Three times daily")
	c.Wait()
	return c
}

func TestControllerEmptyGuard(t *testing.T) {
	// With name, dosage and frequency all empty, no edit may move the
	// display away from the placeholder, regardless of other fields.
	ctx := context.Background()
	c := NewController(NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning")
	c.ApplyFieldEdit(ctx, FieldInterval, "Every 8 hours")
	c.ApplyPrecautionsEdit(ctx, []string{"With food"})
	c.Wait()

	snap := c.Snapshot()
	if snap.State != "empty" {
		t.Errorf("state = %q, want empty", snap.State)
	}
	if snap.Display.English != Placeholder || snap.Display.Translated != Placeholder {
		t.Errorf("display left the placeholder state: %+v", snap.Display)
	}
}

func TestControllerPartialFreezesDisplay(t *testing.T) {
	ctx := context.Background()
	c := NewController(NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.Wait()

	snap := c.Snapshot()
	if snap.State != "partial" {
		t.Errorf("state = %q, want partial", snap.State)
	}
	if snap.Display.English != Placeholder {
		t.Errorf("mid-entry display must stay frozen, got %q", snap.Display.English)
	}
}

func TestControllerGeneratesWhenComplete(t *testing.T) {
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	snap := c.Snapshot()
	if snap.State != "generated" {
		t.Fatalf("state = %q, want generated", snap.State)
	}
	wantEnglish := "Paracetamol\nℹ️ Take 500mg tablet three times daily."
	if snap.Display.English != wantEnglish {
		t.Errorf("english = %q, want %q", snap.Display.English, wantEnglish)
	}
	if snap.Status != TranslationReady {
		t.Errorf("status = %q, want ready", snap.Status)
	}
	// No vocabulary mappings configured, so the translated pane falls
	// back to the English terms.
	if snap.Display.Translated != wantEnglish {
		t.Errorf("translated = %q", snap.Display.Translated)
	}
}

func TestControllerPreservesUserContentAcrossFieldEdit(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	// Insert a user line between the dosage line and the end, then
	// change only the frequency.
	snap := c.Snapshot()
	edited := snap.Display.English + "\nShake the bottle first"
	c.ApplyEnglishEdit(ctx, edited)

	c.ApplyFieldEdit(ctx, FieldFrequency, "Twice daily")
	c.Wait()

	snap = c.Snapshot()
	if !strings.Contains(snap.Display.English, "twice daily.") {
		t.Errorf("dosage line not updated: %q", snap.Display.English)
	}
	lines := strings.Split(snap.Display.English, "\n")
	if lines[len(lines)-1] != "Shake the bottle first" {
		t.Errorf("user line lost or moved: %q", snap.Display.English)
	}
	if strings.Contains(snap.Display.English, "three times daily") {
		t.Errorf("stale generated content duplicated: %q", snap.Display.English)
	}
}

func TestControllerSelectiveFieldClear(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")
	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning, night")
	c.ApplyPrecautionsEdit(ctx, []string{"With food"})
	c.Wait()

	snap := c.Snapshot()
	if !strings.Contains(snap.Display.English, TimeMarker) {
		t.Fatalf("setup: time line missing from %q", snap.Display.English)
	}

	c.ApplyFieldClear(ctx, FieldTimeOfDay)
	c.Wait()

	snap = c.Snapshot()
	if strings.Contains(snap.Display.English, TimeMarker) {
		t.Errorf("time line survived the clear: %q", snap.Display.English)
	}
	if !strings.Contains(snap.Display.English, "Precautions") ||
		!strings.Contains(snap.Display.English, "• With food") {
		t.Errorf("unrelated sections disturbed: %q", snap.Display.English)
	}
	if snap.State != "generated" {
		t.Errorf("state = %q, want generated (required set intact)", snap.State)
	}
}

func TestControllerClearToEmptyResetsDisplays(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldClear(ctx, FieldName)
	c.ApplyFieldClear(ctx, FieldDosage)
	c.ApplyFieldClear(ctx, FieldFrequency)
	c.Wait()

	snap := c.Snapshot()
	if snap.State != "empty" {
		t.Errorf("state = %q, want empty", snap.State)
	}
	if snap.Display.English != Placeholder || snap.Display.Translated != Placeholder {
		t.Errorf("displays not reset: %+v", snap.Display)
	}
}

func TestControllerClearBreakingRequiredSetStripsOnly(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldClear(ctx, FieldDosage)
	c.Wait()

	snap := c.Snapshot()
	if snap.State != "partial" {
		t.Errorf("state = %q, want partial", snap.State)
	}
	if strings.Contains(snap.Display.English, DosageMarker) {
		t.Errorf("dosage sentence survived the clear: %q", snap.Display.English)
	}
	if !strings.Contains(snap.Display.English, "Paracetamol") {
		t.Errorf("name line should survive: %q", snap.Display.English)
	}
}

func TestControllerManualDeletionOfGeneratedLineResurrects(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	// Delete the generated dosage line from the visible text. The
	// retained structure keeps the value and the next unrelated edit
	// regenerates it.
	c.ApplyEnglishEdit(ctx, "Paracetamol")
	snap := c.Snapshot()
	if strings.Contains(snap.Display.English, DosageMarker) {
		t.Fatalf("dosage line should be hidden after the manual delete")
	}

	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning")
	c.Wait()

	snap = c.Snapshot()
	if !strings.Contains(snap.Display.English, "ℹ️ Take 500mg tablet three times daily.") {
		t.Errorf("dosage line not resurrected: %q", snap.Display.English)
	}
}

func TestControllerDecimalDosageStableAcrossEdits(t *testing.T) {
	ctx := context.Background()
	c := NewController(NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "2.5mg tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")
	c.Wait()

	// Unrelated edits must regenerate the same sentence; the decimal
	// point must never shed a duplicated tail.
	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning")
	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "night")
	c.Wait()

	snap := c.Snapshot()
	want := "Aspirin\nℹ️ Take 2.5mg tablet daily.\n🕒 night 🌙"
	if snap.Display.English != want {
		t.Errorf("english = %q, want %q", snap.Display.English, want)
	}
}

func TestControllerDosageValueWithSentencePeriodStable(t *testing.T) {
	ctx := context.Background()
	c := NewController(NewMockVocabBuilder().Build(), "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet. Crush before use")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")
	c.Wait()

	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning")
	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "night")
	c.Wait()

	snap := c.Snapshot()
	want := "Aspirin\nℹ️ Take 1 tablet. Crush before use daily.\n🕒 night 🌙"
	if snap.Display.English != want {
		t.Errorf("english = %q, want %q", snap.Display.English, want)
	}

	// Trailing text the user types after the sentence survives, and only
	// that text is re-appended on the next regeneration.
	c.ApplyEnglishEdit(ctx, "Aspirin\nℹ️ Take 1 tablet. Crush before use daily. with water\n🕒 night 🌙")
	c.ApplyFieldEdit(ctx, FieldTimeOfDay, "morning")
	c.Wait()

	snap = c.Snapshot()
	want = "Aspirin\nℹ️ Take 1 tablet. Crush before use daily. with water\n🕒 morning 🌅"
	if snap.Display.English != want {
		t.Errorf("english = %q, want %q", snap.Display.English, want)
	}
}

func TestControllerEnglishEditMirrorsUserContent(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().
		WithTerm(entities.CategoryDosage, "500mg tablet", "af", "500mg tablet (af)").
		Build()
	c := generatedController(t, vocab, "af")

	snap := c.Snapshot()
	if !strings.Contains(snap.Display.Translated, "500mg tablet (af)") {
		t.Fatalf("setup: translated pane not populated: %q", snap.Display.Translated)
	}

	c.ApplyEnglishEdit(ctx, snap.Display.English+"\nTake care with alcohol")

	snap = c.Snapshot()
	// The user line is mirrored positionally; the translated scaffold is
	// not retranslated.
	if !strings.HasSuffix(snap.Display.Translated, "\nTake care with alcohol") {
		t.Errorf("user line not mirrored into translated pane: %q", snap.Display.Translated)
	}
	if !strings.Contains(snap.Display.Translated, "500mg tablet (af)") {
		t.Errorf("translated scaffold was disturbed: %q", snap.Display.Translated)
	}
}

func TestControllerTranslatedOverride(t *testing.T) {
	ctx := context.Background()
	c := generatedController(t, NewMockVocabBuilder().Build(), "af")

	c.ApplyTranslatedEdit(ctx, "my hand-written translation")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Twice daily")
	c.Wait()

	snap := c.Snapshot()
	if snap.Display.Translated != "my hand-written translation" {
		t.Errorf("override clobbered by regeneration: %q", snap.Display.Translated)
	}
	if !strings.Contains(snap.Display.English, "twice daily.") {
		t.Errorf("english side must keep regenerating: %q", snap.Display.English)
	}
}

func TestControllerStaleTranslationDropped(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().WithDelay(30 * time.Millisecond).Build()
	c := NewController(vocab, "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")

	// Supersede the in-flight request before its lookups settle.
	c.ApplyFieldEdit(ctx, FieldFrequency, "Twice daily")
	c.Wait()

	snap := c.Snapshot()
	if !strings.Contains(snap.Display.Translated, "twice daily.") {
		t.Errorf("translated pane should reflect the last-issued input, got %q", snap.Display.Translated)
	}
	if snap.Status != TranslationReady {
		t.Errorf("status = %q, want ready", snap.Status)
	}
}

func TestControllerLoadingPlaceholder(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().WithDelay(100 * time.Millisecond).Build()
	c := NewController(vocab, "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")

	snap := c.Snapshot()
	if snap.Display.Translated != LoadingPlaceholder {
		t.Errorf("translated pane should show the loading placeholder, got %q", snap.Display.Translated)
	}
	if snap.Status != TranslationLoading {
		t.Errorf("status = %q, want loading", snap.Status)
	}
	c.Wait()
}

func TestControllerEnglishEditDuringTranslationSettles(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().WithDelay(50 * time.Millisecond).Build()
	c := NewController(vocab, "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")

	// Supersede the in-flight translation with a direct text edit while
	// the pane still shows the loading placeholder. The pane must settle
	// rather than stay on the placeholder after the stale result is
	// dropped.
	edited := "Aspirin\nℹ️ Take 1 tablet daily.\nKeep refrigerated"
	c.ApplyEnglishEdit(ctx, edited)
	c.Wait()

	snap := c.Snapshot()
	if snap.Status != TranslationReady {
		t.Errorf("status = %q, want ready", snap.Status)
	}
	if snap.Display.Translated != edited {
		t.Errorf("translated pane did not settle: %q", snap.Display.Translated)
	}
}

func TestControllerLookupFailureFallsBackToEnglish(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().WithError(errors.New("fetch failed")).Build()
	c := NewController(vocab, "af")

	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")
	c.Wait()

	snap := c.Snapshot()
	if snap.Status != TranslationFailed {
		t.Errorf("status = %q, want error", snap.Status)
	}
	if snap.Display.Translated != snap.Display.English {
		t.Errorf("failed translation must fall back to the English text, got %q", snap.Display.Translated)
	}
}

func TestControllerSetLanguageRetranslates(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().
		WithStatic(entities.StaticKeyTake, "zu", "Thatha").
		Build()
	c := generatedController(t, vocab, "af")

	c.SetLanguage(ctx, "zu")
	c.Wait()

	snap := c.Snapshot()
	if snap.Display.Language != "zu" {
		t.Errorf("language = %q", snap.Display.Language)
	}
	if !strings.Contains(snap.Display.Translated, "ℹ️ Thatha") {
		t.Errorf("pane not retranslated: %q", snap.Display.Translated)
	}
}

func TestControllerResumeSeedsDisplay(t *testing.T) {
	ctx := context.Background()
	vocab := NewMockVocabBuilder().Build()
	c := NewController(vocab, "af")

	c.Resume(Display{
		English:    "Aspirin\nℹ️ Take 1 tablet daily.",
		Translated: "Aspirin\nℹ️ Neem 1 tablet daagliks.",
		Language:   "af",
	})

	snap := c.Snapshot()
	if snap.State != "generated" {
		t.Errorf("state = %q, want generated", snap.State)
	}
	if vocab.LookupCount() != 0 {
		t.Error("resume must bypass parse/compose and translation")
	}

	// The next edit re-enters the normal pipeline.
	c.ApplyFieldEdit(ctx, FieldName, "Aspirin")
	c.ApplyFieldEdit(ctx, FieldDosage, "1 tablet")
	c.ApplyFieldEdit(ctx, FieldFrequency, "Daily")
	c.Wait()
	snap = c.Snapshot()
	if snap.Display.English != "Aspirin\nℹ️ Take 1 tablet daily." {
		t.Errorf("post-resume regeneration wrong: %q", snap.Display.English)
	}
}

func TestControllerFieldClearNoOp(t *testing.T) {
	ctx := context.Background()
	c := NewController(NewMockVocabBuilder().Build(), "af")

	before := c.Snapshot()
	c.ApplyFieldClear(ctx, FieldTimeOfDay)
	after := c.Snapshot()

	if before.State != after.State || before.Display != after.Display {
		t.Errorf("no-op clear changed state: %+v -> %+v", before, after)
	}
}
