// Package data provides thread-safe storage for the loaded vocabulary
// tables and medication catalog, with atomic swaps for zero-downtime
// reloads.
package data

import (
	"sync/atomic"
	"time"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Compile-time check to ensure VocabularyContainer implements VocabularyStore
var _ interfaces.VocabularyStore = (*VocabularyContainer)(nil)

// VocabularyContainer holds the vocabulary data with atomic pointers so
// readers never see a partially applied reload.
type VocabularyContainer struct {
	tables          atomic.Value // entities.Tables
	catalog         atomic.Value // []entities.CatalogEntry
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewVocabularyContainer creates a container with empty data.
func NewVocabularyContainer() *VocabularyContainer {
	c := &VocabularyContainer{}
	c.tables.Store(entities.Tables{
		Categories: make(map[entities.Category]entities.Table),
		Static:     make(entities.Table),
	})
	c.catalog.Store([]entities.CatalogEntry{})
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetTables returns the currently loaded vocabulary tables.
func (c *VocabularyContainer) GetTables() entities.Tables {
	if v := c.tables.Load(); v != nil {
		if tables, ok := v.(entities.Tables); ok {
			return tables
		}
	}

	logging.Warn("Vocabulary tables are empty or invalid")
	return entities.Tables{
		Categories: make(map[entities.Category]entities.Table),
		Static:     make(entities.Table),
	}
}

// GetCatalog returns the medication name catalog.
func (c *VocabularyContainer) GetCatalog() []entities.CatalogEntry {
	if v := c.catalog.Load(); v != nil {
		if catalog, ok := v.([]entities.CatalogEntry); ok {
			return catalog
		}
	}

	logging.Warn("Medication catalog is empty or invalid")
	return []entities.CatalogEntry{}
}

// GetLastUpdated returns the timestamp of the last vocabulary reload.
func (c *VocabularyContainer) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a reload is currently in progress.
func (c *VocabularyContainer) IsUpdating() bool {
	return c.updating.Load()
}

// SetServerStartTime sets the server start time.
func (c *VocabularyContainer) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (c *VocabularyContainer) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically swaps in freshly loaded tables and catalog.
func (c *VocabularyContainer) UpdateData(tables entities.Tables, catalog []entities.CatalogEntry) {
	c.tables.Store(tables)
	c.catalog.Store(catalog)
	c.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a reload. Returns true if the reload
// may proceed, false if another one is in progress.
func (c *VocabularyContainer) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload.
func (c *VocabularyContainer) EndUpdate() {
	c.updating.Store(false)
}
