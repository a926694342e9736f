package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"warsha/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProjectCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddProject(ctx, "Villa Nour")
	if err != nil {
		t.Fatalf("add project: %v", err)
	}

	p, err := repo.GetProject(ctx, id)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if p.Name != "Villa Nour" || p.TotalAssigned != 0 || p.TotalPaid != 0 {
		t.Fatalf("unexpected project row: %+v", p)
	}

	if err := repo.RenameProject(ctx, id, "Villa Noor"); err != nil {
		t.Fatalf("rename project: %v", err)
	}
	p, _ = repo.GetProject(ctx, id)
	if p.Name != "Villa Noor" {
		t.Fatalf("rename not applied: %+v", p)
	}

	if err := repo.RenameProject(ctx, id+99, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing project, got %v", err)
	}

	if err := repo.DeleteProject(ctx, id); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := repo.GetProject(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListProjectsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, _ := repo.AddProject(ctx, "first")
	second, _ := repo.AddProject(ctx, "second")

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != second || projects[1].ID != first {
		t.Fatalf("expected newest first, got %+v", projects)
	}
}

func TestWorkerCascadeLeavesNoOrphans(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pid, _ := repo.AddProject(ctx, "site")
	wid, err := repo.AddWorker(ctx, pid, "Hassan", "mason")
	if err != nil {
		t.Fatalf("add worker: %v", err)
	}

	ref := core.EntityRef{Kind: core.KindWorker, ID: wid}
	aid, err := repo.InsertAssignment(ctx, core.Assignment{
		Entity: ref, Amount: 500, Date: core.NewDate(2026, 3, 1),
	})
	if err != nil {
		t.Fatalf("insert assignment: %v", err)
	}
	if _, err := repo.InsertPayment(ctx, core.Payment{
		AssignmentID: aid, Amount: 200, Date: core.NewDate(2026, 3, 5),
	}); err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	if err := repo.DeleteWorker(ctx, wid); err != nil {
		t.Fatalf("delete worker: %v", err)
	}

	if _, err := repo.GetWorker(ctx, wid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("worker should be gone, got %v", err)
	}
	if _, err := repo.GetAssignment(ctx, aid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("assignment should be gone, got %v", err)
	}
	payments, err := repo.PaymentsByAssignment(ctx, aid)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("orphan payments survived the cascade: %+v", payments)
	}
}

func TestProjectCascadeCoversAllLegs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pid, _ := repo.AddProject(ctx, "compound")
	wid, _ := repo.AddWorker(ctx, pid, "Hassan", "mason")
	iid, _ := repo.AddImporter(ctx, pid, "Al Binaa Supplies")

	refs := []core.EntityRef{
		{Kind: core.KindCustomer, ID: pid},
		{Kind: core.KindWorker, ID: wid},
		{Kind: core.KindImporter, ID: iid},
	}
	var assignmentIDs []int64
	for _, ref := range refs {
		a := core.Assignment{Entity: ref, Amount: 100, Date: core.NewDate(2026, 4, 1)}
		if ref.Kind == core.KindImporter {
			a.Good = "steel"
		}
		aid, err := repo.InsertAssignment(ctx, a)
		if err != nil {
			t.Fatalf("insert %s assignment: %v", ref.Kind, err)
		}
		if _, err := repo.InsertPayment(ctx, core.Payment{
			AssignmentID: aid, Amount: 40, Date: core.NewDate(2026, 4, 2),
		}); err != nil {
			t.Fatalf("insert %s payment: %v", ref.Kind, err)
		}
		assignmentIDs = append(assignmentIDs, aid)
	}

	if err := repo.DeleteProject(ctx, pid); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	for _, aid := range assignmentIDs {
		if _, err := repo.GetAssignment(ctx, aid); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("assignment %d should be gone, got %v", aid, err)
		}
		payments, _ := repo.PaymentsByAssignment(ctx, aid)
		if len(payments) != 0 {
			t.Fatalf("orphan payments for assignment %d: %+v", aid, payments)
		}
	}
	if _, err := repo.GetWorker(ctx, wid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("worker should be gone, got %v", err)
	}
	if _, err := repo.GetImporter(ctx, iid); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("importer should be gone, got %v", err)
	}
}

func TestAggregateQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pid, _ := repo.AddProject(ctx, "tower")
	w1, _ := repo.AddWorker(ctx, pid, "Omar", "electrician")
	w2, _ := repo.AddWorker(ctx, pid, "Samir", "plumber")

	a1, _ := repo.InsertAssignment(ctx, core.Assignment{
		Entity: core.EntityRef{Kind: core.KindWorker, ID: w1}, Amount: 300, Date: core.NewDate(2026, 5, 1),
	})
	a2, _ := repo.InsertAssignment(ctx, core.Assignment{
		Entity: core.EntityRef{Kind: core.KindWorker, ID: w2}, Amount: 150, Date: core.NewDate(2026, 5, 2),
	})
	repo.InsertPayment(ctx, core.Payment{AssignmentID: a1, Amount: 100, Date: core.NewDate(2026, 5, 3)})
	repo.InsertPayment(ctx, core.Payment{AssignmentID: a2, Amount: 50, Date: core.NewDate(2026, 5, 4)})

	sum, err := repo.SumAssignments(ctx, core.KindWorker, []int64{w1, w2})
	if err != nil {
		t.Fatalf("sum assignments: %v", err)
	}
	if sum != 450 {
		t.Fatalf("expected assigned 450, got %v", sum)
	}

	ids, err := repo.AssignmentIDs(ctx, core.KindWorker, []int64{w1, w2})
	if err != nil {
		t.Fatalf("assignment ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 assignment ids, got %v", ids)
	}

	paid, err := repo.SumPayments(ctx, ids)
	if err != nil {
		t.Fatalf("sum payments: %v", err)
	}
	if paid != 150 {
		t.Fatalf("expected paid 150, got %v", paid)
	}

	// Empty sets sum to zero without touching the store.
	if sum, _ := repo.SumAssignments(ctx, core.KindWorker, nil); sum != 0 {
		t.Fatalf("empty entity set should sum to 0, got %v", sum)
	}
	if paid, _ := repo.SumPayments(ctx, nil); paid != 0 {
		t.Fatalf("empty assignment set should sum to 0, got %v", paid)
	}
}

func TestGoodsByImporterName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p1, _ := repo.AddProject(ctx, "north site")
	p2, _ := repo.AddProject(ctx, "south site")
	i1, _ := repo.AddImporter(ctx, p1, "Al Binaa Supplies")
	i2, _ := repo.AddImporter(ctx, p2, "Al Binaa Supplies")

	for _, row := range []struct {
		id   int64
		good string
	}{
		{i1, "cement"},
		{i1, "steel"},
		{i2, "steel"},
		{i2, "sand"},
		{i2, ""},
	} {
		if _, err := repo.InsertAssignment(ctx, core.Assignment{
			Entity: core.EntityRef{Kind: core.KindImporter, ID: row.id},
			Amount: 10, Date: core.NewDate(2026, 6, 1), Good: row.good,
		}); err != nil {
			t.Fatalf("insert assignment: %v", err)
		}
	}

	goods, err := repo.GoodsByImporterName(ctx, "Al Binaa Supplies")
	if err != nil {
		t.Fatalf("goods by name: %v", err)
	}
	want := []string{"cement", "sand", "steel"}
	if len(goods) != len(want) {
		t.Fatalf("expected %v, got %v", want, goods)
	}
	for i := range want {
		if goods[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, goods)
		}
	}
}
