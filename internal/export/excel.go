// Package export writes spreadsheet snapshots of the ledger: one workbook
// with a sheet per report (projects, workers, importers). Read-only over the
// store; never mutates anything.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"warsha/internal/core"
	"warsha/internal/services"
	"warsha/internal/storage"
)

type Exporter struct {
	store    *storage.SQLiteRepository
	resolver *services.Resolver
}

func NewExporter(store *storage.SQLiteRepository, resolver *services.Resolver) *Exporter {
	return &Exporter{store: store, resolver: resolver}
}

// Snapshot writes a timestamped workbook into dir and returns its path.
func (e *Exporter) Snapshot(ctx context.Context, dir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeProjects(ctx, f); err != nil {
		return "", err
	}
	if err := e.writeWorkers(ctx, f); err != nil {
		return "", err
	}
	if err := e.writeImporters(ctx, f); err != nil {
		return "", err
	}

	name := fmt.Sprintf("projects_export_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot exported", "path", path)
	return path, nil
}

func (e *Exporter) writeProjects(ctx context.Context, f *excelize.File) error {
	projects, err := e.store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("export projects: %w", err)
	}

	const sheet = "Projects"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename projects sheet: %w", err)
	}
	if err := writeHeader(f, sheet, []string{"ID", "Name", "Assigned", "Paid", "Remaining"}); err != nil {
		return err
	}
	for i, p := range projects {
		row := []any{p.ID, p.Name, p.TotalAssigned, p.TotalPaid, p.TotalAssigned - p.TotalPaid}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeWorkers(ctx context.Context, f *excelize.File) error {
	groups, err := e.resolver.WorkerGroups(ctx)
	if err != nil {
		return fmt.Errorf("export workers: %w", err)
	}

	const sheet = "Workers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create workers sheet: %w", err)
	}
	if err := writeHeader(f, sheet, []string{"Name", "Job", "Projects", "Assigned", "Paid", "Remaining"}); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{g.Name, g.Job, joinProjects(g.Projects), g.TotalAssigned, g.TotalPaid, g.TotalRemaining}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeImporters(ctx context.Context, f *excelize.File) error {
	groups, err := e.resolver.ImporterGroups(ctx)
	if err != nil {
		return fmt.Errorf("export importers: %w", err)
	}

	const sheet = "Importers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create importers sheet: %w", err)
	}
	if err := writeHeader(f, sheet, []string{"Name", "Goods", "Projects", "Assigned", "Paid", "Remaining"}); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{g.Name, strings.Join(g.Goods, ", "), joinProjects(g.Projects), g.TotalAssigned, g.TotalPaid, g.TotalRemaining}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, titles []string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := writeRow(f, sheet, 1, anySlice(titles)); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func joinProjects(refs []core.ProjectRef) string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return strings.Join(names, ", ")
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
