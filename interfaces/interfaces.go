// Package interfaces defines core abstractions for the instructions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// VocabularyStore defines the contract for vocabulary data storage.
// It provides thread-safe access to the loaded vocabulary tables and the
// medication catalog with atomic operations for zero-downtime reloads.
type VocabularyStore interface {
	GetTables() entities.Tables
	GetCatalog() []entities.CatalogEntry
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(tables entities.Tables, catalog []entities.CatalogEntry)
	BeginUpdate() bool
	EndUpdate()
}

// VocabularyParser defines the contract for loading vocabulary tables and
// the medication catalog from their external tabular sources.
type VocabularyParser interface {
	// LoadAll reads every vocabulary table plus the catalog file.
	LoadAll() (entities.Tables, []entities.CatalogEntry, error)
}

// VocabularyLookup is the lookup service consumed by the instruction
// engine. A term with no mapping for the requested language is returned
// unchanged; an error means the backing data could not be made available.
type VocabularyLookup interface {
	Lookup(ctx context.Context, category entities.Category, englishTerm, lang string) (string, error)
	LookupStatic(ctx context.Context, key, lang string) (string, error)

	// HeaderSpellings returns every localized spelling of the
	// precautions header, used by the instruction parser for
	// case-insensitive header detection.
	HeaderSpellings() []string

	// Suggest returns catalog medication names matching the prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}

// HTTPHandler defines the contract for the REST surface. Routing is
// wired in the server package; every method is a chi-compatible handler.
type HTTPHandler interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	RestoreSession(w http.ResponseWriter, r *http.Request)

	AddTab(w http.ResponseWriter, r *http.Request)
	DeleteTab(w http.ResponseWriter, r *http.Request)
	ActivateTab(w http.ResponseWriter, r *http.Request)

	EditField(w http.ResponseWriter, r *http.Request)
	ClearField(w http.ResponseWriter, r *http.Request)
	EditEnglishText(w http.ResponseWriter, r *http.Request)
	EditTranslatedText(w http.ResponseWriter, r *http.Request)
	SetLanguage(w http.ResponseWriter, r *http.Request)
	FinalizeTab(w http.ResponseWriter, r *http.Request)

	SetPatient(w http.ResponseWriter, r *http.Request)
	GetPatient(w http.ResponseWriter, r *http.Request)

	SuggestMedications(w http.ResponseWriter, r *http.Request)
	LookupTerm(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)

	RespondWithJSON(w http.ResponseWriter, code int, payload interface{})
	RespondWithError(w http.ResponseWriter, code int, message string)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated vocabulary reloads and system health checks.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	HealthCheck() (status string, data map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

// Validator defines the contract for request input validation.
type Validator interface {
	// ValidateText validates free-form user text (field values,
	// instruction text edits).
	ValidateText(input string) error

	// ValidateLanguage checks the tag against the supported set.
	ValidateLanguage(lang string) error

	// ValidateCategory checks a vocabulary category name.
	ValidateCategory(input string) (entities.Category, error)

	// ValidateTabName validates a medication tab display name.
	ValidateTabName(name string) error
}
