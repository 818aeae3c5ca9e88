package instruction

import "strings"

// Field identifies one structured medication attribute.
type Field int

const (
	FieldName Field = iota
	FieldDosage
	FieldFrequency
	FieldInterval
	FieldTimeOfDay
	FieldPrecautions
)

var fieldNames = map[Field]string{
	FieldName:        "name",
	FieldDosage:      "dosage",
	FieldFrequency:   "frequency",
	FieldInterval:    "interval",
	FieldTimeOfDay:   "timeOfDay",
	FieldPrecautions: "precautions",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return "unknown"
}

// ParseField maps a wire-format field name to its Field value.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Fields is the mutable structured input for one medication entry. The
// name may carry a comma-separated qualifier suffix that is stripped for
// display. Precautions keep insertion order.
type Fields struct {
	Name        string   `json:"name"`
	Dosage      string   `json:"dosage"`
	Frequency   string   `json:"frequency"`
	Interval    string   `json:"interval"`
	TimeOfDay   string   `json:"timeOfDay"`
	Precautions []string `json:"precautions"`
}

// Clone returns a deep copy of the fields.
func (f Fields) Clone() Fields {
	out := f
	out.Precautions = append([]string(nil), f.Precautions...)
	return out
}

// RequiredComplete reports whether name, dosage and frequency are all
// non-blank. Only then may dosage, time and precautions content be
// generated.
func (f Fields) RequiredComplete() bool {
	return strings.TrimSpace(f.Name) != "" &&
		strings.TrimSpace(f.Dosage) != "" &&
		strings.TrimSpace(f.Frequency) != ""
}

// RequiredEmpty reports the "nothing to show yet" state: name, dosage and
// frequency all blank.
func (f Fields) RequiredEmpty() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Dosage) == "" &&
		strings.TrimSpace(f.Frequency) == ""
}

// Set assigns a single-valued field. Precautions are list-valued and go
// through SetPrecautions.
func (f *Fields) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldDosage:
		f.Dosage = value
	case FieldFrequency:
		f.Frequency = value
	case FieldInterval:
		f.Interval = value
	case FieldTimeOfDay:
		f.TimeOfDay = value
	case FieldPrecautions:
		if value == "" {
			f.Precautions = nil
		} else {
			f.Precautions = append(f.Precautions, value)
		}
	}
}

// SetPrecautions replaces the precautions list.
func (f *Fields) SetPrecautions(values []string) {
	f.Precautions = append([]string(nil), values...)
}

// Clear blanks a single field.
func (f *Fields) Clear(field Field) {
	if field == FieldPrecautions {
		f.Precautions = nil
		return
	}
	f.Set(field, "")
}

// DisplayName returns the medication name with any comma-separated
// qualifier suffix stripped: split on the first comma, keep the first
// segment.
func (f Fields) DisplayName() string {
	name := f.Name
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
