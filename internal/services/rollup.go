// Package services holds the ledger orchestration, the rollup engine and the
// entity resolver over the SQLite store.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"warsha/internal/core"
	"warsha/internal/storage"
)

// Rollup maintains each project's cached total_assigned / total_paid. Every
// recompute is a full recompute; data volumes are small enough that the
// simplicity is worth more than incremental deltas.
type Rollup struct {
	store *storage.SQLiteRepository
}

func NewRollup(store *storage.SQLiteRepository) *Rollup {
	return &Rollup{store: store}
}

// AffectedProjects resolves the projects whose totals a mutation on the given
// entity can touch. A customer ref names the project directly; worker and
// importer refs follow the row to its owning project. A ref whose row is
// already gone affects nothing.
func (r *Rollup) AffectedProjects(ctx context.Context, ref core.EntityRef) ([]int64, error) {
	switch ref.Kind {
	case core.KindCustomer:
		return []int64{ref.ID}, nil
	case core.KindWorker:
		w, err := r.store.GetWorker(ctx, ref.ID)
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []int64{w.ProjectID}, nil
	case core.KindImporter:
		imp, err := r.store.GetImporter(ctx, ref.ID)
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []int64{imp.ProjectID}, nil
	}
	return nil, core.ErrInvalidEntity
}

// Recalc recomputes every project reachable from the given entity.
func (r *Rollup) Recalc(ctx context.Context, ref core.EntityRef) error {
	projectIDs, err := r.AffectedProjects(ctx, ref)
	if err != nil {
		return err
	}
	for _, id := range projectIDs {
		if err := r.RecalcProject(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// RecalcProject recomputes one project's totals from scratch and writes them
// back to the project row:
//
//	total_assigned = customer assignments + assignments of owned workers
//	                 + assignments of owned importers
//	total_paid     = payments against exactly those assignments
func (r *Rollup) RecalcProject(ctx context.Context, projectID int64) error {
	totals, err := r.computeTotals(ctx, projectID, true)
	if err != nil {
		return fmt.Errorf("recompute project %d: %w", projectID, err)
	}

	if err := r.store.UpdateProjectTotals(ctx, projectID, totals.Assigned, totals.Paid); err != nil {
		return fmt.Errorf("write project %d totals: %w", projectID, err)
	}

	slog.DebugContext(ctx, "Project totals recomputed",
		"project_id", projectID,
		"total_assigned", totals.Assigned,
		"total_paid", totals.Paid)
	return nil
}

// Totals returns the cached rollup for a project.
func (r *Rollup) Totals(ctx context.Context, projectID int64) (core.ProjectTotals, error) {
	p, err := r.store.GetProject(ctx, projectID)
	if err != nil {
		return core.ProjectTotals{}, err
	}
	return core.ProjectTotals{ProjectID: p.ID, Assigned: p.TotalAssigned, Paid: p.TotalPaid}, nil
}

// CrewSummary computes the worker+importer legs only, excluding the customer
// leg. Computed on read, never cached.
func (r *Rollup) CrewSummary(ctx context.Context, projectID int64) (core.CrewSummary, error) {
	s, err := r.computeTotals(ctx, projectID, false)
	if err != nil {
		return core.CrewSummary{}, fmt.Errorf("crew summary for project %d: %w", projectID, err)
	}
	return core.CrewSummary{Assigned: s.Assigned, Paid: s.Paid}, nil
}

// CustomerSummary computes the customer leg only.
func (r *Rollup) CustomerSummary(ctx context.Context, projectID int64) (core.CrewSummary, error) {
	assigned, err := r.store.SumAssignments(ctx, core.KindCustomer, []int64{projectID})
	if err != nil {
		return core.CrewSummary{}, err
	}
	assignmentIDs, err := r.store.AssignmentIDs(ctx, core.KindCustomer, []int64{projectID})
	if err != nil {
		return core.CrewSummary{}, err
	}
	paid, err := r.store.SumPayments(ctx, assignmentIDs)
	if err != nil {
		return core.CrewSummary{}, err
	}
	return core.CrewSummary{Assigned: assigned, Paid: paid}, nil
}

func (r *Rollup) computeTotals(ctx context.Context, projectID int64, includeCustomer bool) (core.ProjectTotals, error) {
	totals := core.ProjectTotals{ProjectID: projectID}

	workerIDs, err := r.store.WorkerIDs(ctx, projectID)
	if err != nil {
		return totals, err
	}
	importerIDs, err := r.store.ImporterIDs(ctx, projectID)
	if err != nil {
		return totals, err
	}

	legs := []struct {
		kind core.EntityKind
		ids  []int64
	}{
		{core.KindWorker, workerIDs},
		{core.KindImporter, importerIDs},
	}
	if includeCustomer {
		legs = append(legs, struct {
			kind core.EntityKind
			ids  []int64
		}{core.KindCustomer, []int64{projectID}})
	}

	var assignmentIDs []int64
	for _, leg := range legs {
		sum, err := r.store.SumAssignments(ctx, leg.kind, leg.ids)
		if err != nil {
			return totals, err
		}
		totals.Assigned += sum

		ids, err := r.store.AssignmentIDs(ctx, leg.kind, leg.ids)
		if err != nil {
			return totals, err
		}
		assignmentIDs = append(assignmentIDs, ids...)
	}

	totals.Paid, err = r.store.SumPayments(ctx, assignmentIDs)
	if err != nil {
		return totals, err
	}
	return totals, nil
}
