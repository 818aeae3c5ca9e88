// Package entities defines the data types shared between the vocabulary
// loader, the data container and the lookup service.
package entities

// Category identifies one vocabulary table.
type Category string

const (
	CategoryDosage      Category = "dosage"
	CategoryFrequency   Category = "frequency"
	CategoryIntervals   Category = "intervals"
	CategoryTimeOfDay   Category = "time_of_day"
	CategoryPrecautions Category = "precautions"
)

// Categories lists every vocabulary table in loading order.
var Categories = []Category{
	CategoryDosage,
	CategoryFrequency,
	CategoryIntervals,
	CategoryTimeOfDay,
	CategoryPrecautions,
}

// Static lookup keys. These are not vocabulary terms but fixed pieces of
// the generated instruction scaffold.
const (
	StaticKeyTake              = "take"
	StaticKeyPrecautionsHeader = "precautionsHeader"
)

// Supported language tags. English is the source language; the remaining
// tags are the regional target languages loaded from the vocabulary files.
const (
	LangEnglish   = "en"
	LangAfrikaans = "af"
	LangZulu      = "zu"
	LangXhosa     = "xh"
)

// Languages lists every supported language tag.
var Languages = []string{LangEnglish, LangAfrikaans, LangZulu, LangXhosa}

// Entry holds the translations of a single English term, keyed by
// language tag. The English term itself is stored under LangEnglish so a
// lookup for "en" is a plain identity read.
type Entry map[string]string

// Table maps a case-folded English term to its translations.
type Table map[string]Entry

// Tables groups every loaded vocabulary table by category, plus the
// static table keyed by StaticKey* values.
type Tables struct {
	Categories map[Category]Table
	Static     Table
}

// CatalogEntry is one medication name from the catalog file, kept in file
// order for stable autocomplete results.
type CatalogEntry struct {
	Name       string `json:"name"`
	Normalized string `json:"-"`
}
