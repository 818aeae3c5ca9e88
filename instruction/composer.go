package instruction

import "strings"

// The English scaffold verb. Composition always produces English; the
// verb is substituted per target language at synchronization time.
const composeVerb = "Take"

// period is one recognized time-of-day word with its display emoji.
type period struct {
	name  string
	emoji string
}

// Recognized periods in display order.
var periods = []period{
	{"morning", MorningEmoji},
	{"afternoon", AfternoonEmoji},
	{"evening", EveningEmoji},
	{"night", NightEmoji},
}

// Compose produces the generated sections for the current field values,
// passing preserved user content through untouched. Callers must check
// the generation guard (Fields.RequiredComplete) first; Compose assumes
// name, dosage and frequency are present.
func Compose(f Fields, user UserContent, trailing string) Structure {
	s := Structure{
		MedicationNameLine: f.DisplayName(),
		DosageLine:         composeDosageLine(f),
		DosageTrailing:     trailing,
		User:               user.Clone(),
	}

	if strings.TrimSpace(f.TimeOfDay) != "" {
		s.TimeOfDayLine = TimeMarker + " " + formatTimeOfDay(f.TimeOfDay)
	}

	if len(f.Precautions) > 0 {
		s.PrecautionsHeader = "Precautions"
		for _, p := range f.Precautions {
			s.PrecautionsList = append(s.PrecautionsList, BulletMarker+" "+p)
		}
	}

	return s
}

// composeDosageLine renders the dosage sentence: marker, verb, dosage,
// lowercased frequency and optional lowercased interval, ending with a
// period.
func composeDosageLine(f Fields) string {
	var b strings.Builder
	b.WriteString(DosageMarker)
	b.WriteString(" ")
	b.WriteString(composeVerb)
	b.WriteString(" ")
	b.WriteString(f.Dosage)
	b.WriteString(" ")
	b.WriteString(strings.ToLower(f.Frequency))
	if strings.TrimSpace(f.Interval) != "" {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(f.Interval))
	}
	b.WriteString(".")
	return b.String()
}

// formatTimeOfDay renders each recognized period found in the raw value
// as "period emoji", joined with ", ". Recognition is a case-insensitive
// substring check. When nothing is recognized the raw input is used
// lowercased.
func formatTimeOfDay(raw string) string {
	lowered := strings.ToLower(raw)

	var parts []string
	for _, p := range periods {
		if strings.Contains(lowered, p.name) {
			parts = append(parts, p.name+" "+p.emoji)
		}
	}
	if len(parts) == 0 {
		return lowered
	}
	return strings.Join(parts, ", ")
}

// RecognizedPeriods returns the period words present in the raw
// time-of-day value, in display order. Used by translation substitution.
func RecognizedPeriods(raw string) []string {
	lowered := strings.ToLower(raw)

	var names []string
	for _, p := range periods {
		if strings.Contains(lowered, p.name) {
			names = append(names, p.name)
		}
	}
	return names
}
