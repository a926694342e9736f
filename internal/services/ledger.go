package services

import (
	"context"
	"fmt"
	"log/slog"

	"warsha/internal/core"
	"warsha/internal/storage"
)

// Ledger orchestrates every mutation: validate first, then write, then
// recompute the affected project totals. Reads pass straight through to the
// store's snapshots.
type Ledger struct {
	store  *storage.SQLiteRepository
	rollup *Rollup
}

func NewLedger(store *storage.SQLiteRepository) *Ledger {
	return &Ledger{store: store, rollup: NewRollup(store)}
}

// Rollup exposes the engine for summary reads.
func (l *Ledger) Rollup() *Rollup {
	return l.rollup
}

// Store exposes the underlying repository for read-only collaborators
// (resolver, exporter).
func (l *Ledger) Store() *storage.SQLiteRepository {
	return l.store
}

// Projects

func (l *Ledger) AddProject(ctx context.Context, name string) (int64, error) {
	if err := core.ValidateName(name); err != nil {
		return 0, err
	}
	return l.store.AddProject(ctx, name)
}

func (l *Ledger) RenameProject(ctx context.Context, id int64, name string) error {
	if err := core.ValidateName(name); err != nil {
		return err
	}
	return l.store.RenameProject(ctx, id, name)
}

// DeleteProject cascades to the project's workers, importers, assignments and
// payments. The cached totals disappear with the row, so nothing is left to
// recompute.
func (l *Ledger) DeleteProject(ctx context.Context, id int64) error {
	return l.store.DeleteProject(ctx, id)
}

func (l *Ledger) Projects(ctx context.Context) ([]core.Project, error) {
	return l.store.ListProjects(ctx)
}

func (l *Ledger) Project(ctx context.Context, id int64) (core.Project, error) {
	return l.store.GetProject(ctx, id)
}

// Workers

func (l *Ledger) AddWorker(ctx context.Context, projectID int64, name, job string) (int64, error) {
	if err := core.ValidateName(name); err != nil {
		return 0, err
	}
	if _, err := l.store.GetProject(ctx, projectID); err != nil {
		return 0, err
	}
	return l.store.AddWorker(ctx, projectID, name, job)
}

func (l *Ledger) RenameWorker(ctx context.Context, id int64, name string) error {
	if err := core.ValidateName(name); err != nil {
		return err
	}
	return l.store.RenameWorker(ctx, id, name)
}

// DeleteWorker cascades to the worker's assignments and their payments, then
// recomputes the owning project. The project id is resolved before the
// delete; afterwards the row is gone.
func (l *Ledger) DeleteWorker(ctx context.Context, id int64) error {
	w, err := l.store.GetWorker(ctx, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteWorker(ctx, id); err != nil {
		return err
	}
	return l.rollup.RecalcProject(ctx, w.ProjectID)
}

func (l *Ledger) Workers(ctx context.Context, projectID int64) ([]core.Worker, error) {
	return l.store.WorkersByProject(ctx, projectID)
}

// Importers

func (l *Ledger) AddImporter(ctx context.Context, projectID int64, name string) (int64, error) {
	if err := core.ValidateName(name); err != nil {
		return 0, err
	}
	if _, err := l.store.GetProject(ctx, projectID); err != nil {
		return 0, err
	}
	return l.store.AddImporter(ctx, projectID, name)
}

func (l *Ledger) RenameImporter(ctx context.Context, id int64, name string) error {
	if err := core.ValidateName(name); err != nil {
		return err
	}
	return l.store.RenameImporter(ctx, id, name)
}

func (l *Ledger) DeleteImporter(ctx context.Context, id int64) error {
	imp, err := l.store.GetImporter(ctx, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteImporter(ctx, id); err != nil {
		return err
	}
	return l.rollup.RecalcProject(ctx, imp.ProjectID)
}

func (l *Ledger) Importers(ctx context.Context, projectID int64) ([]core.Importer, error) {
	return l.store.ImportersByProject(ctx, projectID)
}

// Assignments

// AddAssignment inserts a contracted amount for an entity and recomputes
// every project reachable from it. The referenced entity must exist; the
// schema cannot enforce that because entity_id is polymorphic.
func (l *Ledger) AddAssignment(ctx context.Context, ref core.EntityRef, amount float64, date core.Date, description, good string) (int64, error) {
	a := core.Assignment{Entity: ref, Amount: amount, Date: date, Description: description, Good: good}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := l.requireEntity(ctx, ref); err != nil {
		return 0, err
	}

	id, err := l.store.InsertAssignment(ctx, a)
	if err != nil {
		return 0, err
	}
	if err := l.rollup.Recalc(ctx, ref); err != nil {
		return 0, fmt.Errorf("recompute after assignment %d: %w", id, err)
	}
	return id, nil
}

// DeleteAssignment looks the owner up before deleting so the right project
// can still be recomputed afterwards.
func (l *Ledger) DeleteAssignment(ctx context.Context, id int64) error {
	a, err := l.store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteAssignmentRow(ctx, id); err != nil {
		return err
	}
	return l.rollup.Recalc(ctx, a.Entity)
}

func (l *Ledger) Assignments(ctx context.Context, ref core.EntityRef) ([]core.Assignment, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return l.store.AssignmentsByEntity(ctx, ref)
}

// Payments

// AddPayment settles part of an assignment. The paid sum may never exceed
// the contracted amount beyond Epsilon; paying it off exactly is fine.
func (l *Ledger) AddPayment(ctx context.Context, assignmentID int64, amount float64, date core.Date) (int64, error) {
	p := core.Payment{AssignmentID: assignmentID, Amount: amount, Date: date}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	a, err := l.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	paid, err := l.store.PaidSum(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	if paid+amount > a.Amount+core.Epsilon {
		slog.WarnContext(ctx, "Payment rejected, exceeds contracted amount",
			"assignment_id", assignmentID,
			"amount", amount,
			"paid", paid,
			"contracted", a.Amount)
		return 0, &core.OverpaymentError{
			AssignmentID: assignmentID,
			Amount:       amount,
			Remaining:    a.Amount - paid,
		}
	}

	id, err := l.store.InsertPayment(ctx, p)
	if err != nil {
		return 0, err
	}
	if err := l.rollup.Recalc(ctx, a.Entity); err != nil {
		return 0, fmt.Errorf("recompute after payment %d: %w", id, err)
	}
	return id, nil
}

func (l *Ledger) DeletePayment(ctx context.Context, id int64) error {
	p, err := l.store.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	a, err := l.store.GetAssignment(ctx, p.AssignmentID)
	if err != nil {
		return err
	}
	if err := l.store.DeletePaymentRow(ctx, id); err != nil {
		return err
	}
	return l.rollup.Recalc(ctx, a.Entity)
}

func (l *Ledger) Payments(ctx context.Context, assignmentID int64) ([]core.Payment, error) {
	return l.store.PaymentsByAssignment(ctx, assignmentID)
}

func (l *Ledger) requireEntity(ctx context.Context, ref core.EntityRef) error {
	var err error
	switch ref.Kind {
	case core.KindCustomer:
		_, err = l.store.GetProject(ctx, ref.ID)
	case core.KindWorker:
		_, err = l.store.GetWorker(ctx, ref.ID)
	case core.KindImporter:
		_, err = l.store.GetImporter(ctx, ref.ID)
	default:
		err = core.ErrInvalidEntity
	}
	return err
}

func (l *Ledger) Close() error {
	if l.store != nil {
		return l.store.Close()
	}
	return nil
}
