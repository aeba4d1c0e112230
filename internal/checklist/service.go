// ABOUTME: Checklist service, the only reader and writer of project entries
// ABOUTME: Reads per-user checked state against a catalog and batch-upserts submissions

package checklist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/2389/checklist/internal/store"
)

// Project is one item of the externally supplied catalog: a name and a
// human-readable description. The catalog is configuration, not persisted.
type Project struct {
	Name        string
	Description string
}

// ProjectState is a catalog project together with the user's checked state.
type ProjectState struct {
	Project
	Checked bool
}

// Service reads and upserts per-user project checked state.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a checklist service backed by the given store.
func New(st store.Store) *Service {
	return &Service{
		store:  st,
		logger: slog.Default().With("component", "checklist"),
	}
}

// GetState returns the checked state for every project in the catalog, in
// catalog order. Projects the user has never submitted default to
// unchecked; a missing row is not an error, only storage failures are.
func (s *Service) GetState(ctx context.Context, userID int64, catalog []Project) ([]ProjectState, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	checked := make(map[string]bool, len(entries))
	for _, entry := range entries {
		checked[entry.ProjectName] = entry.Checked
	}

	states := make([]ProjectState, 0, len(catalog))
	for _, project := range catalog {
		states = append(states, ProjectState{
			Project: project,
			Checked: checked[project.Name],
		})
	}
	return states, nil
}

// Submit upserts every selection for the user as one batch, in catalog
// order. Selections outside the catalog are ignored. The batch stops on
// the first storage failure; entries already written stay written, there
// is no rollback.
func (s *Service) Submit(ctx context.Context, userID int64, catalog []Project, selections map[string]bool) error {
	entries := make([]*store.ProjectEntry, 0, len(selections))
	for _, project := range catalog {
		isChecked, ok := selections[project.Name]
		if !ok {
			continue
		}
		entries = append(entries, &store.ProjectEntry{
			UserID:      userID,
			ProjectName: project.Name,
			Checked:     isChecked,
		})
	}

	if err := s.store.UpsertEntries(ctx, entries); err != nil {
		return fmt.Errorf("submitting checklist: %w", err)
	}

	s.logger.Debug("submitted checklist", "user_id", userID, "entries", len(entries))
	return nil
}

// CheckedCount returns how many projects in the states slice are checked.
func CheckedCount(states []ProjectState) int {
	count := 0
	for _, state := range states {
		if state.Checked {
			count++
		}
	}
	return count
}
