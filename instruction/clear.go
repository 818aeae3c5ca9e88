package instruction

// ClearSection blanks exactly the generated section(s) tied to the
// cleared field, leaving every user-content slot and unrelated section
// untouched. Dosage, frequency and interval jointly produce the dosage
// sentence, so clearing any of them blanks the whole line. The returned
// bool reports whether anything changed; clearing a field whose mapped
// section holds no content is a no-op.
func ClearSection(s Structure, field Field) (Structure, bool) {
	out := s.Clone()

	switch field {
	case FieldName:
		if out.MedicationNameLine == "" {
			return s, false
		}
		out.MedicationNameLine = ""
	case FieldDosage, FieldFrequency, FieldInterval:
		if out.DosageLine == "" {
			return s, false
		}
		out.DosageLine = ""
	case FieldTimeOfDay:
		if out.TimeOfDayLine == "" {
			return s, false
		}
		out.TimeOfDayLine = ""
	case FieldPrecautions:
		if out.PrecautionsHeader == "" && len(out.PrecautionsList) == 0 {
			return s, false
		}
		out.PrecautionsHeader = ""
		out.PrecautionsList = nil
	default:
		return s, false
	}

	return out, true
}
