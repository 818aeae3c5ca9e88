// Package scheduler manages the periodic vocabulary reloads.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
)

// VocabularyScheduler reloads the vocabulary tables on a fixed daily
// schedule so edits to the CSV files reach a long-running process.
type VocabularyScheduler struct {
	store     interfaces.VocabularyStore
	loader    interfaces.VocabularyParser
	scheduler *gocron.Scheduler
}

// NewVocabularyScheduler creates a scheduler with injected dependencies
func NewVocabularyScheduler(store interfaces.VocabularyStore, loader interfaces.VocabularyParser) *VocabularyScheduler {
	return &VocabularyScheduler{
		store:     store,
		loader:    loader,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load and schedules the daily reloads
func (s *VocabularyScheduler) Start() error {
	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial vocabulary load", "error", err)
		return fmt.Errorf("initial vocabulary load failed: %w", err)
	}

	// Reload at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload vocabulary", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule vocabulary reloads", "error", err)
		return fmt.Errorf("failed to schedule vocabulary reloads: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *VocabularyScheduler) Stop() {
	s.scheduler.Stop()
}

// reload reads every vocabulary table and swaps them in atomically
func (s *VocabularyScheduler) reload() error {
	if !s.store.BeginUpdate() {
		logging.Info("Vocabulary reload already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	start := time.Now()

	tables, catalog, err := s.loader.LoadAll()
	if err != nil {
		logging.Error("Failed to load vocabulary tables", "error", err)
		return fmt.Errorf("failed to load vocabulary tables: %w", err)
	}

	s.store.UpdateData(tables, catalog)

	terms := 0
	for _, table := range tables.Categories {
		terms += len(table)
	}
	logging.Info("Vocabulary reload completed",
		"duration", time.Since(start).String(),
		"terms", terms,
		"catalog_entries", len(catalog))

	return nil
}

// startStalenessMonitoring warns when reloads stop landing
func (s *VocabularyScheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Vocabulary hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
