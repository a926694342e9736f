package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"warsha/internal/core"
)

// Assignments

func (r *SQLiteRepository) InsertAssignment(ctx context.Context, a core.Assignment) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO assignments (entity_type, entity_id, amount, date, description, good)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(a.Entity.Kind), a.Entity.ID, a.Amount, a.Date.String(), a.Description, a.Good)
	if err != nil {
		return 0, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("assignment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Assignment created",
		"id", id,
		"entity_type", a.Entity.Kind,
		"entity_id", a.Entity.ID,
		"amount", a.Amount)
	return id, nil
}

func (r *SQLiteRepository) GetAssignment(ctx context.Context, id int64) (core.Assignment, error) {
	var (
		a    core.Assignment
		kind string
		date string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, entity_type, entity_id, amount, date, description, good
		 FROM assignments WHERE id = ?`, id).
		Scan(&a.ID, &kind, &a.Entity.ID, &a.Amount, &date, &a.Description, &a.Good)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Assignment{}, fmt.Errorf("assignment %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	a.Entity.Kind = core.EntityKind(kind)
	if a.Date, err = core.ParseDate(date); err != nil {
		return core.Assignment{}, fmt.Errorf("assignment %d date %q: %w", id, date, err)
	}
	return a, nil
}

func (r *SQLiteRepository) AssignmentsByEntity(ctx context.Context, ref core.EntityRef) ([]core.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, amount, date, description, good
		 FROM assignments WHERE entity_type = ? AND entity_id = ? ORDER BY id DESC`,
		string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []core.Assignment
	for rows.Next() {
		var (
			a    core.Assignment
			kind string
			date string
		)
		if err := rows.Scan(&a.ID, &kind, &a.Entity.ID, &a.Amount, &date, &a.Description, &a.Good); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Entity.Kind = core.EntityKind(kind)
		if a.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("assignment %d date %q: %w", a.ID, date, err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// DeleteAssignmentRow removes an assignment and its payments, dependent-first
// inside one transaction. Callers resolve the owning project before calling.
func (r *SQLiteRepository) DeleteAssignmentRow(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assignment: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE assignment_id = ?`, id); err != nil {
		return fmt.Errorf("delete assignment payments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if err := requireAffected(res, "assignment"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assignment: %w", err)
	}

	slog.InfoContext(ctx, "Assignment deleted", "id", id)
	return nil
}

// Payments

func (r *SQLiteRepository) InsertPayment(ctx context.Context, p core.Payment) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (assignment_id, amount, date) VALUES (?, ?, ?)`,
		p.AssignmentID, p.Amount, p.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment created",
		"id", id, "assignment_id", p.AssignmentID, "amount", p.Amount)
	return id, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	var (
		p    core.Payment
		date string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, assignment_id, amount, date FROM payments WHERE id = ?`, id).
		Scan(&p.ID, &p.AssignmentID, &p.Amount, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, fmt.Errorf("payment %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	if p.Date, err = core.ParseDate(date); err != nil {
		return core.Payment{}, fmt.Errorf("payment %d date %q: %w", id, date, err)
	}
	return p, nil
}

func (r *SQLiteRepository) PaymentsByAssignment(ctx context.Context, assignmentID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, assignment_id, amount, date FROM payments WHERE assignment_id = ? ORDER BY id DESC`,
		assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var (
			p    core.Payment
			date string
		)
		if err := rows.Scan(&p.ID, &p.AssignmentID, &p.Amount, &date); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("payment %d date %q: %w", p.ID, date, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) DeletePaymentRow(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if err := requireAffected(res, "payment"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Payment deleted", "id", id)
	return nil
}

// PaidSum returns the sum of all payments against one assignment.
func (r *SQLiteRepository) PaidSum(ctx context.Context, assignmentID int64) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE assignment_id = ?`, assignmentID).
		Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum payments for assignment %d: %w", assignmentID, err)
	}
	return sum, nil
}

// Aggregates used by the rollup engine and the entity resolver. Every query
// is scoped by an explicit entity or assignment id set, so the same sums
// serve both per-project totals and cross-project group totals.

func (r *SQLiteRepository) WorkerIDs(ctx context.Context, projectID int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM workers WHERE project_id = ? ORDER BY id`, projectID)
}

func (r *SQLiteRepository) ImporterIDs(ctx context.Context, projectID int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM importers WHERE project_id = ? ORDER BY id`, projectID)
}

// SumAssignments totals the contracted amounts for a set of entities of one
// kind. An empty id set sums to zero without touching the store.
func (r *SQLiteRepository) SumAssignments(ctx context.Context, kind core.EntityKind, entityIDs []int64) (float64, error) {
	if len(entityIDs) == 0 {
		return 0, nil
	}
	query := `SELECT COALESCE(SUM(amount), 0) FROM assignments
		WHERE entity_type = ? AND entity_id IN (` + placeholders(len(entityIDs)) + `)`
	var sum float64
	err := r.db.QueryRowContext(ctx, query, idArgs(string(kind), entityIDs)...).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum %s assignments: %w", kind, err)
	}
	return sum, nil
}

// AssignmentIDs lists the assignment ids for a set of entities of one kind.
func (r *SQLiteRepository) AssignmentIDs(ctx context.Context, kind core.EntityKind, entityIDs []int64) ([]int64, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id FROM assignments
		WHERE entity_type = ? AND entity_id IN (` + placeholders(len(entityIDs)) + `) ORDER BY id`
	return r.queryIDs(ctx, query, idArgs(string(kind), entityIDs)...)
}

// SumPayments totals the payments against a set of assignments.
func (r *SQLiteRepository) SumPayments(ctx context.Context, assignmentIDs []int64) (float64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE assignment_id IN (` + placeholders(len(assignmentIDs)) + `)`
	var sum float64
	err := r.db.QueryRowContext(ctx, query, int64Args(assignmentIDs)...).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

// UpdateProjectTotals writes the recomputed rollup back to the project row.
func (r *SQLiteRepository) UpdateProjectTotals(ctx context.Context, projectID int64, assigned, paid float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET total_assigned = ?, total_paid = ? WHERE id = ?`,
		assigned, paid, projectID)
	if err != nil {
		return fmt.Errorf("update project totals: %w", err)
	}
	return requireAffected(res, "project")
}

// Pick-list queries mirrored from the desktop tool's entry dialogs.

func (r *SQLiteRepository) DistinctWorkerNames(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, `SELECT DISTINCT name FROM workers ORDER BY name`)
}

func (r *SQLiteRepository) DistinctJobs(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx,
		`SELECT DISTINCT job FROM workers WHERE job <> '' ORDER BY job`)
}

func (r *SQLiteRepository) DistinctGoods(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx,
		`SELECT DISTINCT good FROM assignments WHERE entity_type = 'importer' AND good <> '' ORDER BY good`)
}

// GoodsByImporterName collects the union of good labels across every
// assignment of every importer row sharing the given name.
func (r *SQLiteRepository) GoodsByImporterName(ctx context.Context, name string) ([]string, error) {
	return r.queryStrings(ctx,
		`SELECT DISTINCT a.good FROM assignments a
		 JOIN importers i ON i.id = a.entity_id
		 WHERE a.entity_type = 'importer' AND i.name = ? AND a.good <> ''
		 ORDER BY a.good`, name)
}

func (r *SQLiteRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan string: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func idArgs(kind string, ids []int64) []any {
	return append([]any{kind}, int64Args(ids)...)
}
