// Package vocabulary loads the translation vocabulary tables and the
// medication name catalog from their CSV sources and exposes the lookup
// service consumed by the instruction engine.
package vocabulary

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/vocabulary/entities"
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// FoldTerm normalizes a term for table keying: trimmed and case-folded.
func FoldTerm(term string) string {
	return foldCaser.String(strings.TrimSpace(term))
}

// readTable reads one vocabulary CSV. The first row is a header whose
// first column names the key ("english" for category tables, "key" for
// the static table) and whose remaining columns are language tags. Each
// data row is keyed by its folded first column; the English form is
// stored under the "en" tag so English lookups are identity reads.
func readTable(path string) (entities.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close vocabulary file", "path", path, "error", err)
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is empty", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("vocabulary file %s needs a key column and at least one language column", path)
	}
	langs := make([]string, len(header))
	for i := 1; i < len(header); i++ {
		langs[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	table := make(entities.Table, len(records)-1)
	skippedEmptyKeys := 0
	skippedShortRows := 0

	for _, row := range records[1:] {
		if len(row) < 2 {
			skippedShortRows++
			continue
		}
		term := strings.TrimSpace(row[0])
		if term == "" {
			skippedEmptyKeys++
			continue
		}

		entry := entities.Entry{entities.LangEnglish: term}
		for i := 1; i < len(row) && i < len(langs); i++ {
			if v := strings.TrimSpace(row[i]); v != "" {
				entry[langs[i]] = v
			}
		}
		table[FoldTerm(term)] = entry
	}

	if skippedEmptyKeys > 0 || skippedShortRows > 0 {
		logging.Warn("Skipped malformed vocabulary rows",
			"path", path,
			"empty_keys", skippedEmptyKeys,
			"short_rows", skippedShortRows)
	}

	return table, nil
}

// readCatalog reads the medication name catalog: one name per row, first
// column only, file order preserved for stable autocomplete results.
func readCatalog(path string) ([]entities.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close catalog file", "path", path, "error", err)
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var catalog []entities.CatalogEntry
	seen := make(map[string]bool)
	skippedEmpty := 0

	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			skippedEmpty++
			continue
		}
		normalized := FoldTerm(name)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		catalog = append(catalog, entities.CatalogEntry{Name: name, Normalized: normalized})
	}

	if skippedEmpty > 0 {
		logging.Warn("Skipped empty catalog rows", "path", path, "count", skippedEmpty)
	}

	return catalog, nil
}
