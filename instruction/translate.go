package instruction

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Translate produces the translated pane text from composed English text
// by literal first-occurrence substring replacement, in fixed order:
// the verb marker sequence, the precautions header, the dosage, frequency
// and interval values, the recognized time-of-day period words, then each
// precaution. Replacement is not anchored to section boundaries, so a
// field value recurring inside user free text is also replaced. That is
// observed, accepted behavior; see the design notes.
func Translate(ctx context.Context, english string, f Fields, lang string, vocab interfaces.VocabularyLookup) (string, error) {
	if lang == entities.LangEnglish {
		return english, nil
	}

	text := english

	// Step 1: the verb marker sequence. Only the start-of-sentence
	// occurrence keeps its leading capital.
	verb, err := vocab.LookupStatic(ctx, entities.StaticKeyTake, lang)
	if err != nil {
		return "", fmt.Errorf("verb lookup failed: %w", err)
	}
	text = replaceFirst(text, DosageMarker+" "+composeVerb, DosageMarker+" "+capitalize(verb))
	text = replaceFirst(text, DosageMarker+" "+strings.ToLower(composeVerb), DosageMarker+" "+strings.ToLower(verb))

	// Step 2: the precautions header.
	header, err := vocab.LookupStatic(ctx, entities.StaticKeyPrecautionsHeader, lang)
	if err != nil {
		return "", fmt.Errorf("header lookup failed: %w", err)
	}
	text = replaceFirst(text, "Precautions", header)

	// Step 3: dosage, frequency and interval values.
	fieldCategories := []struct {
		value    string
		category entities.Category
	}{
		{f.Dosage, entities.CategoryDosage},
		{f.Frequency, entities.CategoryFrequency},
		{f.Interval, entities.CategoryIntervals},
	}
	for _, fc := range fieldCategories {
		if strings.TrimSpace(fc.value) == "" {
			continue
		}
		translated, err := vocab.Lookup(ctx, fc.category, fc.value, lang)
		if err != nil {
			return "", fmt.Errorf("%s lookup failed: %w", fc.category, err)
		}
		text = replaceFirstAnyCase(text, fc.value, translated)
	}

	// Step 4: recognized time-of-day period words.
	for _, p := range RecognizedPeriods(f.TimeOfDay) {
		translated, err := vocab.Lookup(ctx, entities.CategoryTimeOfDay, p, lang)
		if err != nil {
			return "", fmt.Errorf("time-of-day lookup failed: %w", err)
		}
		text = replaceFirst(text, p, translated)
	}

	// Step 5: each precaution string.
	for _, p := range f.Precautions {
		translated, err := vocab.Lookup(ctx, entities.CategoryPrecautions, p, lang)
		if err != nil {
			return "", fmt.Errorf("precaution lookup failed: %w", err)
		}
		text = replaceFirst(text, p, translated)
	}

	return text, nil
}

// replaceFirst replaces the first literal occurrence of old in text.
func replaceFirst(text, old, new string) string {
	if old == "" || old == new {
		return text
	}
	idx := strings.Index(text, old)
	if idx == -1 {
		return text
	}
	return text[:idx] + new + text[idx+len(old):]
}

// replaceFirstAnyCase replaces the first occurrence of the value as
// entered, falling back to its lowercased form. The composed dosage
// sentence lowercases frequency and interval, so the field's stored
// capitalization may not appear in the text.
func replaceFirstAnyCase(text, value, translated string) string {
	if translated == value {
		// No mapping exists; leave the text (and its casing) alone.
		return text
	}
	if strings.Contains(text, value) {
		return replaceFirst(text, value, translated)
	}
	return replaceFirst(text, strings.ToLower(value), translated)
}

// capitalize upper-cases the first rune only.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
