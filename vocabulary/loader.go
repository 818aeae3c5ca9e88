package vocabulary

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Compile-time check to ensure Loader implements VocabularyParser
var _ interfaces.VocabularyParser = (*Loader)(nil)

// File names under the vocabulary directory, one per category plus the
// static table and the medication catalog.
var categoryFiles = map[entities.Category]string{
	entities.CategoryDosage:      "dosage.csv",
	entities.CategoryFrequency:   "frequency.csv",
	entities.CategoryIntervals:   "intervals.csv",
	entities.CategoryTimeOfDay:   "time_of_day.csv",
	entities.CategoryPrecautions: "precautions.csv",
}

const (
	staticFile  = "static.csv"
	catalogFile = "catalog.csv"
)

// Loader reads every vocabulary table and the catalog from one
// directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll reads the five category tables concurrently, then the static
// table and the catalog. Any failed file fails the whole load so a
// partially loaded vocabulary is never served.
func (l *Loader) LoadAll() (entities.Tables, []entities.CatalogEntry, error) {
	tables := entities.Tables{
		Categories: make(map[entities.Category]entities.Table, len(categoryFiles)),
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		loadErr error
	)

	for cat, file := range categoryFiles {
		wg.Add(1)
		go func(cat entities.Category, file string) {
			defer wg.Done()
			table, err := readTable(filepath.Join(l.dir, file))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if loadErr == nil {
					loadErr = fmt.Errorf("loading %s table: %w", cat, err)
				}
				return
			}
			tables.Categories[cat] = table
		}(cat, file)
	}
	wg.Wait()

	if loadErr != nil {
		return entities.Tables{}, nil, loadErr
	}

	static, err := readTable(filepath.Join(l.dir, staticFile))
	if err != nil {
		return entities.Tables{}, nil, fmt.Errorf("loading static table: %w", err)
	}
	tables.Static = static

	catalog, err := readCatalog(filepath.Join(l.dir, catalogFile))
	if err != nil {
		return entities.Tables{}, nil, fmt.Errorf("loading catalog: %w", err)
	}

	termCount := 0
	for _, t := range tables.Categories {
		termCount += len(t)
	}
	logging.Info("Vocabulary loaded",
		"tables", len(tables.Categories),
		"terms", termCount,
		"catalog_entries", len(catalog))

	return tables, catalog, nil
}
