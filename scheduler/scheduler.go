// Package scheduler reloads the knowledge snapshot on a fixed schedule and
// monitors snapshot staleness. Reloads go through the loader and land in the
// store as one atomic swap; a failed reload leaves the previous snapshot in
// place.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/logging"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles knowledge reloads using dependency injection.
type Scheduler struct {
	store     interfaces.KnowledgeStore
	loader    interfaces.KnowledgeLoader
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
func NewScheduler(store interfaces.KnowledgeStore, loader interfaces.KnowledgeLoader) *Scheduler {
	return &Scheduler{
		store:     store,
		loader:    loader,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load and schedules daily reloads.
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial knowledge load", "error", err)
		return fmt.Errorf("initial knowledge load failed: %w", err)
	}

	// Reload daily at 05:00, before clinic opening hours
	_, err := s.scheduler.Every(1).Days().At("05:00").Do(func() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload knowledge tables", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule knowledge reloads: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reload loads a fresh snapshot and installs it atomically.
func (s *Scheduler) reload() error {
	if !s.store.BeginUpdate() {
		logging.Info("Knowledge reload already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	start := time.Now()

	base, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load knowledge tables: %w", err)
	}

	if err := base.Validate(); err != nil {
		return fmt.Errorf("refusing to install invalid knowledge tables: %w", err)
	}

	s.store.UpdateBase(base)

	counts := base.Counts()
	logging.Info("Knowledge reload completed",
		"version", base.Version,
		"duration", time.Since(start).String(),
		"interactions", counts.Interactions,
		"allergy_rules", counts.AllergyRules,
		"condition_rules", counts.ConditionRules,
		"therapeutic_groups", counts.TherapeuticGroups,
		"age_restrictions", counts.AgeRestrictions)

	return nil
}

// startStalenessMonitoring warns when the snapshot has not been refreshed.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.store.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Knowledge snapshot has not been refreshed in over 25 hours")
			}
		}
	}()
}
