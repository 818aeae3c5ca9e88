// Package health provides health checking functionality for the instructions API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/mediscript/instructions-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store interfaces.VocabularyStore
	ttl   time.Duration
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.VocabularyStore, ttl time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store: store,
		ttl:   ttl,
	}
}

// HealthCheck returns HTTP-specific health data.
// Used by the /health HTTP endpoint.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	tables := h.store.GetTables()
	catalog := h.store.GetCatalog()
	lastUpdate := h.store.GetLastUpdated()
	isUpdating := h.store.IsUpdating()

	dataAge := time.Since(lastUpdate)

	terms := 0
	for _, table := range tables.Categories {
		terms += len(table)
	}

	// Vocabulary past its cache lifetime still serves; past several
	// lifetimes the reload is clearly failing.
	switch {
	case terms == 0 || len(tables.Static) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 24*h.ttl:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 4*h.ttl:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"categories":     len(tables.Categories),
		"terms":          terms,
		"static_keys":    len(tables.Static),
		"catalog":        len(catalog),
		"is_updating":    isUpdating,
		"uptime_hours":   math.Round(time.Since(h.store.GetServerStartTime()).Hours()*10) / 10,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled vocabulary reload time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}

	if now.Before(sixPM) {
		return sixPM
	}

	return sixAM.AddDate(0, 0, 1)
}
