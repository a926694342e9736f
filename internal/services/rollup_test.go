package services

import (
	"context"
	"testing"

	"warsha/internal/core"
)

// Mirrors the worked example the tool is specified against: customer 1000
// (paid 400), worker 300 (paid 300), importer 200 (paid 0).
func TestRollupWorkedExample(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	pid, _ := ledger.AddProject(ctx, "P")
	wid, _ := ledger.AddWorker(ctx, pid, "W", "mason")
	iid, _ := ledger.AddImporter(ctx, pid, "I")

	ca, _ := ledger.AddAssignment(ctx,
		core.EntityRef{Kind: core.KindCustomer, ID: pid}, 1000, core.NewDate(2026, 1, 1), "", "")
	wa, _ := ledger.AddAssignment(ctx,
		core.EntityRef{Kind: core.KindWorker, ID: wid}, 300, core.NewDate(2026, 1, 2), "", "")
	if _, err := ledger.AddAssignment(ctx,
		core.EntityRef{Kind: core.KindImporter, ID: iid}, 200, core.NewDate(2026, 1, 3), "", "cement"); err != nil {
		t.Fatalf("importer assignment: %v", err)
	}

	ledger.AddPayment(ctx, ca, 400, core.NewDate(2026, 1, 5))
	ledger.AddPayment(ctx, wa, 300, core.NewDate(2026, 1, 6))

	p, err := ledger.Project(ctx, pid)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if !almostEqual(p.TotalAssigned, 1500) {
		t.Fatalf("expected total_assigned 1500, got %v", p.TotalAssigned)
	}
	if !almostEqual(p.TotalPaid, 700) {
		t.Fatalf("expected total_paid 700, got %v", p.TotalPaid)
	}

	crew, err := ledger.Rollup().CrewSummary(ctx, pid)
	if err != nil {
		t.Fatalf("crew summary: %v", err)
	}
	if !almostEqual(crew.Assigned, 500) || !almostEqual(crew.Paid, 300) {
		t.Fatalf("expected crew 500/300, got %+v", crew)
	}

	customer, err := ledger.Rollup().CustomerSummary(ctx, pid)
	if err != nil {
		t.Fatalf("customer summary: %v", err)
	}
	if !almostEqual(customer.Assigned, 1000) || !almostEqual(customer.Paid, 400) {
		t.Fatalf("expected customer 1000/400, got %+v", customer)
	}
}

func TestRollupEmptyProject(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	pid, _ := ledger.AddProject(ctx, "empty")
	if err := ledger.Rollup().RecalcProject(ctx, pid); err != nil {
		t.Fatalf("recalc empty project: %v", err)
	}

	totals, err := ledger.Rollup().Totals(ctx, pid)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Assigned != 0 || totals.Paid != 0 {
		t.Fatalf("empty project must roll up to 0/0, got %+v", totals)
	}
}

// Totals are scoped per project: mutating one project never disturbs another.
func TestRollupScopedToAffectedProject(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	p1, _ := ledger.AddProject(ctx, "one")
	p2, _ := ledger.AddProject(ctx, "two")
	w1, _ := ledger.AddWorker(ctx, p1, "Hassan", "mason")
	w2, _ := ledger.AddWorker(ctx, p2, "Hassan", "mason")

	ledger.AddAssignment(ctx, core.EntityRef{Kind: core.KindWorker, ID: w1}, 100, core.NewDate(2026, 2, 1), "", "")
	ledger.AddAssignment(ctx, core.EntityRef{Kind: core.KindWorker, ID: w2}, 999, core.NewDate(2026, 2, 2), "", "")

	proj1, _ := ledger.Project(ctx, p1)
	proj2, _ := ledger.Project(ctx, p2)
	if !almostEqual(proj1.TotalAssigned, 100) {
		t.Fatalf("project one expected 100, got %v", proj1.TotalAssigned)
	}
	if !almostEqual(proj2.TotalAssigned, 999) {
		t.Fatalf("project two expected 999, got %v", proj2.TotalAssigned)
	}
}

// Property: after any sequence of mutations, the cached totals match a fresh
// recompute from the raw rows.
func TestRollupCacheMatchesRecompute(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	pid, _ := ledger.AddProject(ctx, "sequence")
	wid, _ := ledger.AddWorker(ctx, pid, "Omar", "electrician")

	a1, _ := ledger.AddAssignment(ctx, core.EntityRef{Kind: core.KindCustomer, ID: pid}, 800, core.NewDate(2026, 3, 1), "", "")
	a2, _ := ledger.AddAssignment(ctx, core.EntityRef{Kind: core.KindWorker, ID: wid}, 250, core.NewDate(2026, 3, 2), "", "")
	pay1, _ := ledger.AddPayment(ctx, a1, 100, core.NewDate(2026, 3, 3))
	ledger.AddPayment(ctx, a2, 250, core.NewDate(2026, 3, 4))
	ledger.DeletePayment(ctx, pay1)
	ledger.DeleteAssignment(ctx, a1)

	cached, _ := ledger.Rollup().Totals(ctx, pid)
	if err := ledger.Rollup().RecalcProject(ctx, pid); err != nil {
		t.Fatalf("recalc: %v", err)
	}
	fresh, _ := ledger.Rollup().Totals(ctx, pid)

	if !almostEqual(cached.Assigned, fresh.Assigned) || !almostEqual(cached.Paid, fresh.Paid) {
		t.Fatalf("cache drifted: cached %+v, fresh %+v", cached, fresh)
	}
	if !almostEqual(fresh.Assigned, 250) || !almostEqual(fresh.Paid, 250) {
		t.Fatalf("expected 250/250 after sequence, got %+v", fresh)
	}
}

func TestAffectedProjectsResolution(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	rollup := ledger.Rollup()

	pid, _ := ledger.AddProject(ctx, "affected")
	wid, _ := ledger.AddWorker(ctx, pid, "Samir", "plumber")

	ids, err := rollup.AffectedProjects(ctx, core.EntityRef{Kind: core.KindCustomer, ID: pid})
	if err != nil || len(ids) != 1 || ids[0] != pid {
		t.Fatalf("customer ref should map to its project, got %v (%v)", ids, err)
	}

	ids, err = rollup.AffectedProjects(ctx, core.EntityRef{Kind: core.KindWorker, ID: wid})
	if err != nil || len(ids) != 1 || ids[0] != pid {
		t.Fatalf("worker ref should map to owning project, got %v (%v)", ids, err)
	}

	// A row that is already gone affects nothing.
	ids, err = rollup.AffectedProjects(ctx, core.EntityRef{Kind: core.KindWorker, ID: wid + 100})
	if err != nil || len(ids) != 0 {
		t.Fatalf("missing worker should affect no projects, got %v (%v)", ids, err)
	}
}
