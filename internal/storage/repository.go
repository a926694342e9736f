// Package storage is the persistent ledger store: five tables in a single
// embedded SQLite file, accessed through one sequential handle.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"warsha/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be set per connection; payments ride on the
	// assignment cascade even though every delete is also explicit.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single writer, sequential access.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Projects

func (r *SQLiteRepository) AddProject(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO projects (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("project insert id: %w", err)
	}

	slog.InfoContext(ctx, "Project created", "id", id, "name", name)
	return id, nil
}

func (r *SQLiteRepository) RenameProject(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	return requireAffected(res, "project")
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	var p core.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, total_assigned, total_paid FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.TotalAssigned, &p.TotalPaid)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, fmt.Errorf("project %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_assigned, total_paid FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var p core.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalAssigned, &p.TotalPaid); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and everything hanging off it. The cascade
// is explicit and dependent-first (payments, then assignments, then crew
// rows, then the project) because assignment.entity_id has no foreign key.
func (r *SQLiteRepository) DeleteProject(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		desc  string
		query string
	}{
		{"worker payments", `DELETE FROM payments WHERE assignment_id IN (
			SELECT a.id FROM assignments a
			JOIN workers w ON w.id = a.entity_id
			WHERE a.entity_type = 'worker' AND w.project_id = ?)`},
		{"importer payments", `DELETE FROM payments WHERE assignment_id IN (
			SELECT a.id FROM assignments a
			JOIN importers i ON i.id = a.entity_id
			WHERE a.entity_type = 'importer' AND i.project_id = ?)`},
		{"customer payments", `DELETE FROM payments WHERE assignment_id IN (
			SELECT id FROM assignments WHERE entity_type = 'customer' AND entity_id = ?)`},
		{"worker assignments", `DELETE FROM assignments WHERE entity_type = 'worker'
			AND entity_id IN (SELECT id FROM workers WHERE project_id = ?)`},
		{"importer assignments", `DELETE FROM assignments WHERE entity_type = 'importer'
			AND entity_id IN (SELECT id FROM importers WHERE project_id = ?)`},
		{"customer assignments", `DELETE FROM assignments WHERE entity_type = 'customer' AND entity_id = ?`},
		{"workers", `DELETE FROM workers WHERE project_id = ?`},
		{"importers", `DELETE FROM importers WHERE project_id = ?`},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.query, id); err != nil {
			return fmt.Errorf("delete project %s: %w", s.desc, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := requireAffected(res, "project"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}

	slog.InfoContext(ctx, "Project deleted", "id", id)
	return nil
}

// Workers

func (r *SQLiteRepository) AddWorker(ctx context.Context, projectID int64, name, job string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (project_id, name, job) VALUES (?, ?, ?)`, projectID, name, job)
	if err != nil {
		return 0, fmt.Errorf("insert worker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("worker insert id: %w", err)
	}

	slog.InfoContext(ctx, "Worker created", "id", id, "project_id", projectID, "name", name, "job", job)
	return id, nil
}

func (r *SQLiteRepository) RenameWorker(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE workers SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename worker: %w", err)
	}
	return requireAffected(res, "worker")
}

func (r *SQLiteRepository) GetWorker(ctx context.Context, id int64) (core.Worker, error) {
	var w core.Worker
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, job FROM workers WHERE id = ?`, id).
		Scan(&w.ID, &w.ProjectID, &w.Name, &w.Job)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Worker{}, fmt.Errorf("worker %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Worker{}, fmt.Errorf("get worker: %w", err)
	}
	return w, nil
}

func (r *SQLiteRepository) WorkersByProject(ctx context.Context, projectID int64) ([]core.Worker, error) {
	return r.queryWorkers(ctx,
		`SELECT id, project_id, name, job FROM workers WHERE project_id = ? ORDER BY id`, projectID)
}

func (r *SQLiteRepository) ListWorkers(ctx context.Context) ([]core.Worker, error) {
	return r.queryWorkers(ctx,
		`SELECT id, project_id, name, job FROM workers ORDER BY name, job, id`)
}

func (r *SQLiteRepository) queryWorkers(ctx context.Context, query string, args ...any) ([]core.Worker, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()

	var workers []core.Worker
	for rows.Next() {
		var w core.Worker
		if err := rows.Scan(&w.ID, &w.ProjectID, &w.Name, &w.Job); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeleteWorker removes a worker, its assignments and their payments,
// dependent-first inside one transaction.
func (r *SQLiteRepository) DeleteWorker(ctx context.Context, id int64) error {
	if err := r.deleteEntity(ctx, "workers", core.KindWorker, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Worker deleted", "id", id)
	return nil
}

// Importers

func (r *SQLiteRepository) AddImporter(ctx context.Context, projectID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO importers (project_id, name) VALUES (?, ?)`, projectID, name)
	if err != nil {
		return 0, fmt.Errorf("insert importer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("importer insert id: %w", err)
	}

	slog.InfoContext(ctx, "Importer created", "id", id, "project_id", projectID, "name", name)
	return id, nil
}

func (r *SQLiteRepository) RenameImporter(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE importers SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename importer: %w", err)
	}
	return requireAffected(res, "importer")
}

func (r *SQLiteRepository) GetImporter(ctx context.Context, id int64) (core.Importer, error) {
	var imp core.Importer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name FROM importers WHERE id = ?`, id).
		Scan(&imp.ID, &imp.ProjectID, &imp.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Importer{}, fmt.Errorf("importer %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Importer{}, fmt.Errorf("get importer: %w", err)
	}
	return imp, nil
}

func (r *SQLiteRepository) ImportersByProject(ctx context.Context, projectID int64) ([]core.Importer, error) {
	return r.queryImporters(ctx,
		`SELECT id, project_id, name FROM importers WHERE project_id = ? ORDER BY id`, projectID)
}

func (r *SQLiteRepository) ListImporters(ctx context.Context) ([]core.Importer, error) {
	return r.queryImporters(ctx,
		`SELECT id, project_id, name FROM importers ORDER BY name, id`)
}

func (r *SQLiteRepository) queryImporters(ctx context.Context, query string, args ...any) ([]core.Importer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query importers: %w", err)
	}
	defer rows.Close()

	var importers []core.Importer
	for rows.Next() {
		var imp core.Importer
		if err := rows.Scan(&imp.ID, &imp.ProjectID, &imp.Name); err != nil {
			return nil, fmt.Errorf("scan importer: %w", err)
		}
		importers = append(importers, imp)
	}
	return importers, rows.Err()
}

// DeleteImporter removes an importer, its assignments and their payments,
// dependent-first inside one transaction.
func (r *SQLiteRepository) DeleteImporter(ctx context.Context, id int64) error {
	if err := r.deleteEntity(ctx, "importers", core.KindImporter, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Importer deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) deleteEntity(ctx context.Context, table string, kind core.EntityKind, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", kind, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM payments WHERE assignment_id IN (
		SELECT id FROM assignments WHERE entity_type = ? AND entity_id = ?)`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s payments: %w", kind, err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM assignments WHERE entity_type = ? AND entity_id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s assignments: %w", kind, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if err := requireAffected(res, string(kind)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", kind, err)
	}
	return nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}
