package services

import (
	"context"
	"fmt"
	"sort"

	"warsha/internal/core"
	"warsha/internal/storage"
)

// Resolver groups worker and importer rows into cross-project reporting
// identities: workers by (name, job), importers by name. The grouping is
// derived on every read and never stored, so it cannot drift from the rows.
//
// Two different people sharing a name and job merge into one group. That
// mirrors the bookkeeping tool this replaces; the key is plain string
// equality.
type Resolver struct {
	store *storage.SQLiteRepository
}

func NewResolver(store *storage.SQLiteRepository) *Resolver {
	return &Resolver{store: store}
}

// WorkerGroups returns every (name, job) identity with combined totals
// across all of its rows, ordered by name then job.
func (r *Resolver) WorkerGroups(ctx context.Context) ([]core.WorkerGroup, error) {
	workers, err := r.store.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve workers: %w", err)
	}
	projectNames, err := r.projectNames(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ name, job string }
	byKey := make(map[key]*core.WorkerGroup)
	var order []key
	for _, w := range workers {
		k := key{w.Name, w.Job}
		g, ok := byKey[k]
		if !ok {
			g = &core.WorkerGroup{Name: w.Name, Job: w.Job}
			byKey[k] = g
			order = append(order, k)
		}
		g.RowIDs = append(g.RowIDs, w.ID)
		g.Projects = appendProject(g.Projects, w.ProjectID, projectNames)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].name != order[j].name {
			return order[i].name < order[j].name
		}
		return order[i].job < order[j].job
	})

	groups := make([]core.WorkerGroup, 0, len(order))
	for _, k := range order {
		g := byKey[k]
		if err := r.fillTotals(ctx, core.KindWorker, g.RowIDs, &g.TotalAssigned, &g.TotalPaid); err != nil {
			return nil, fmt.Errorf("totals for worker %q/%q: %w", g.Name, g.Job, err)
		}
		g.TotalRemaining = g.TotalAssigned - g.TotalPaid
		groups = append(groups, *g)
	}
	return groups, nil
}

// ImporterGroups returns every importer name with combined totals and the
// union of good labels across all of the group's assignments.
func (r *Resolver) ImporterGroups(ctx context.Context) ([]core.ImporterGroup, error) {
	importers, err := r.store.ListImporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve importers: %w", err)
	}
	projectNames, err := r.projectNames(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*core.ImporterGroup)
	var order []string
	for _, imp := range importers {
		g, ok := byName[imp.Name]
		if !ok {
			g = &core.ImporterGroup{Name: imp.Name}
			byName[imp.Name] = g
			order = append(order, imp.Name)
		}
		g.RowIDs = append(g.RowIDs, imp.ID)
		g.Projects = appendProject(g.Projects, imp.ProjectID, projectNames)
	}
	sort.Strings(order)

	groups := make([]core.ImporterGroup, 0, len(order))
	for _, name := range order {
		g := byName[name]
		if g.Goods, err = r.store.GoodsByImporterName(ctx, name); err != nil {
			return nil, fmt.Errorf("goods for importer %q: %w", name, err)
		}
		if err := r.fillTotals(ctx, core.KindImporter, g.RowIDs, &g.TotalAssigned, &g.TotalPaid); err != nil {
			return nil, fmt.Errorf("totals for importer %q: %w", name, err)
		}
		g.TotalRemaining = g.TotalAssigned - g.TotalPaid
		groups = append(groups, *g)
	}
	return groups, nil
}

// Pick-lists for entry forms.

func (r *Resolver) WorkerNames(ctx context.Context) ([]string, error) {
	return r.store.DistinctWorkerNames(ctx)
}

func (r *Resolver) Jobs(ctx context.Context) ([]string, error) {
	return r.store.DistinctJobs(ctx)
}

func (r *Resolver) Goods(ctx context.Context) ([]string, error) {
	return r.store.DistinctGoods(ctx)
}

// fillTotals aggregates assigned/paid over the group's row-id set with the
// same sums the rollup engine uses, just scoped to the group instead of a
// project.
func (r *Resolver) fillTotals(ctx context.Context, kind core.EntityKind, rowIDs []int64, assigned, paid *float64) error {
	sum, err := r.store.SumAssignments(ctx, kind, rowIDs)
	if err != nil {
		return err
	}
	assignmentIDs, err := r.store.AssignmentIDs(ctx, kind, rowIDs)
	if err != nil {
		return err
	}
	paidSum, err := r.store.SumPayments(ctx, assignmentIDs)
	if err != nil {
		return err
	}
	*assigned = sum
	*paid = paidSum
	return nil
}

func (r *Resolver) projectNames(ctx context.Context) (map[int64]string, error) {
	projects, err := r.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve projects: %w", err)
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

func appendProject(refs []core.ProjectRef, id int64, names map[int64]string) []core.ProjectRef {
	for _, ref := range refs {
		if ref.ID == id {
			return refs
		}
	}
	return append(refs, core.ProjectRef{ID: id, Name: names[id]})
}
