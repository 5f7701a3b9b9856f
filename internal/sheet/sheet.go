// Package sheet imports and exports reference data (categories, companies,
// contractors, machines, locations) as .xlsx workbooks.
package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

// Row is one reference record read from a workbook.
type Row struct {
	Line   int // 1-based row number in the sheet
	Code   string
	Name   string
	Active *bool
}

var header = []any{"Code", "Name", "Active", "Created"}

// ReadRows reads the first sheet. Columns are Code, Name and an optional
// Active flag; a workbook with a single column is read as names only. A
// header row is detected and skipped.
func ReadRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.NewValidationError("file", "cannot read workbook: "+err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.NewValidationError("file", "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	start := 0
	if len(rows) > 0 && isHeader(rows[0]) {
		start = 1
	}

	namesOnly := true
	for _, row := range rows[start:] {
		if len(row) > 1 {
			namesOnly = false
			break
		}
	}

	var out []Row
	var errs []model.FieldError
	for i := start; i < len(rows); i++ {
		cells := rows[i]
		row := Row{Line: i + 1}
		if namesOnly {
			row.Name = cell(cells, 0)
		} else {
			row.Code = strings.ToUpper(cell(cells, 0))
			row.Name = cell(cells, 1)
			if v := cell(cells, 2); v != "" {
				active, ok := parseBool(v)
				if !ok {
					errs = append(errs, model.FieldError{Field: fmt.Sprintf("row %d", row.Line), Message: "active must be yes or no"})
					continue
				}
				row.Active = &active
			}
		}
		if row.Code == "" && row.Name == "" {
			continue
		}
		if row.Name == "" {
			errs = append(errs, model.FieldError{Field: fmt.Sprintf("row %d", row.Line), Message: "name is required"})
			continue
		}
		out = append(out, row)
	}

	if len(errs) > 0 {
		return nil, &model.ValidationError{Errors: errs}
	}
	return out, nil
}

func isHeader(row []string) bool {
	first := strings.ToLower(cell(row, 0))
	return first == "code" || first == "name"
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1", "active":
		return true, true
	case "no", "n", "false", "0", "inactive":
		return false, true
	}
	return false, false
}

// Result summarises an import.
type Result struct {
	Kind     model.ReferenceKind `json:"kind"`
	Imported int                 `json:"imported"`
}

// Import reads a workbook and upserts every row in one transaction. Either
// all rows are applied or none.
func Import(ctx context.Context, database *sql.DB, kind model.ReferenceKind, r io.Reader) (Result, error) {
	if !kind.Valid() {
		return Result{}, model.NewValidationError("kind", fmt.Sprintf("unknown reference kind %q", kind))
	}

	rows, err := ReadRows(r)
	if err != nil {
		return Result{}, err
	}

	err = db.RunInTx(ctx, database, func(q db.Querier) error {
		for _, row := range rows {
			ref, err := store.UpsertReference(ctx, q, kind, row.Code, row.Name)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
			if row.Active != nil && *row.Active != ref.IsActive {
				if err := store.SetReferenceActive(ctx, q, kind, ref.ID, *row.Active); err != nil {
					return fmt.Errorf("row %d: %w", row.Line, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("importing %s: %w", kind, err)
	}

	return Result{Kind: kind, Imported: len(rows)}, nil
}

// Export writes every reference of kind to w as a workbook.
func Export(ctx context.Context, q db.Querier, kind model.ReferenceKind, w io.Writer) error {
	refs, err := store.ListReferences(ctx, q, kind)
	if err != nil {
		return err
	}
	return WriteRows(w, kind, refs)
}

// WriteRows writes refs as a single-sheet workbook named after kind.
func WriteRows(w io.Writer, kind model.ReferenceKind, refs []model.Reference) error {
	f := excelize.NewFile()
	defer f.Close()

	name := string(kind)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := f.SetCellStyle(name, "A1", "D1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, ref := range refs {
		active := "yes"
		if !ref.IsActive {
			active = "no"
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{ref.Code, ref.Name, active, ref.CreatedAt.Format("2006-01-02")}
		if err := f.SetSheetRow(name, axis, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(name, "B", "B", 32); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
