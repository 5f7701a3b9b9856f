package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/orodjarna/internal/codegen"
	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

// CreateIssueParams holds the fields of a new issue.
type CreateIssueParams struct {
	IssueNo      string
	ItemID       int64
	IssuedBy     int64
	Context      model.Context
	OperatorName string
	Remarks      string
}

// CreateIssue inserts an open issue. The caller has already checked that the
// item is available and the context references are active.
func CreateIssue(ctx context.Context, q db.Querier, p CreateIssueParams) (*model.Issue, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO issues (issue_no, item_id, issued_by, company_id, contractor_id, machine_id, location_id,
		                     operator_name, remarks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.IssueNo, p.ItemID, p.IssuedBy,
		p.Context.CompanyID, p.Context.ContractorID, p.Context.MachineID, p.Context.LocationID,
		p.OperatorName, p.Remarks,
	)
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", db.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting issue id: %w", err)
	}

	return GetIssue(ctx, q, id)
}

const issueSelect = `SELECT s.id, s.issue_no, s.item_id, s.issued_by,
        s.company_id, s.contractor_id, s.machine_id, s.location_id,
        s.operator_name, s.remarks, s.is_returned, s.created_at,
        i.name, i.serial_number,
        COALESCE(co.name, ''), COALESCE(ct.name, ''), COALESCE(m.name, ''), COALESCE(l.name, '')
 FROM issues s
 JOIN items i ON i.id = s.item_id
 LEFT JOIN companies co ON co.id = s.company_id
 LEFT JOIN contractors ct ON ct.id = s.contractor_id
 LEFT JOIN machines m ON m.id = s.machine_id
 LEFT JOIN locations l ON l.id = s.location_id`

func scanIssue(s rowScanner) (*model.Issue, error) {
	is := &model.Issue{}
	err := s.Scan(&is.ID, &is.IssueNo, &is.ItemID, &is.IssuedBy,
		&is.Context.CompanyID, &is.Context.ContractorID, &is.Context.MachineID, &is.Context.LocationID,
		&is.OperatorName, &is.Remarks, &is.IsReturned, &is.CreatedAt,
		&is.ItemName, &is.ItemSerial,
		&is.CompanyName, &is.ContractorName, &is.MachineName, &is.LocationName)
	return is, err
}

func getIssueWhere(ctx context.Context, q db.Querier, where string, arg any) (*model.Issue, error) {
	is, err := scanIssue(q.QueryRowContext(ctx, issueSelect+` WHERE `+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue: %w", err)
	}
	return is, nil
}

// GetIssue returns an issue by ID, hydrated with its item and context.
func GetIssue(ctx context.Context, q db.Querier, id int64) (*model.Issue, error) {
	return getIssueWhere(ctx, q, `s.id = ?`, id)
}

// GetIssueByNo returns an issue by its OUTWARD code.
func GetIssueByNo(ctx context.Context, q db.Querier, issueNo string) (*model.Issue, error) {
	return getIssueWhere(ctx, q, `s.issue_no = ?`, issueNo)
}

// FindActiveIssues returns issues that have not been returned yet, newest first.
func FindActiveIssues(ctx context.Context, q db.Querier) ([]model.Issue, error) {
	return listIssues(ctx, q, issueSelect+` WHERE s.is_returned = 0 ORDER BY s.created_at DESC, s.id DESC`)
}

// ListIssues returns every issue, newest first.
func ListIssues(ctx context.Context, q db.Querier) ([]model.Issue, error) {
	return listIssues(ctx, q, issueSelect+` ORDER BY s.created_at DESC, s.id DESC`)
}

// ListIssuesForItem returns the checkout history of one item, newest first.
func ListIssuesForItem(ctx context.Context, q db.Querier, itemID int64) ([]model.Issue, error) {
	return listIssues(ctx, q, issueSelect+` WHERE s.item_id = ? ORDER BY s.created_at DESC, s.id DESC`, itemID)
}

func listIssues(ctx context.Context, q db.Querier, query string, args ...any) ([]model.Issue, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		issues = append(issues, *is)
	}
	return issues, rows.Err()
}

// MarkIssueReturned closes an open issue. Closing an issue twice is an error.
func MarkIssueReturned(ctx context.Context, q db.Querier, id int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE issues SET is_returned = 1 WHERE id = ? AND is_returned = 0`, id,
	)
	if err != nil {
		return fmt.Errorf("marking issue returned: %w", db.ClassifyError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var found bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM issues WHERE id = ?)`, id).Scan(&found); err != nil {
		return fmt.Errorf("checking issue: %w", err)
	}
	if !found {
		return fmt.Errorf("issue %d: %w", id, model.ErrNotFound)
	}
	return fmt.Errorf("issue %d already returned: %w", id, model.ErrInvalidState)
}

// CountIssues returns the number of issues ever created.
func CountIssues(ctx context.Context, q db.Querier) (int, error) {
	return count(ctx, q, "issues")
}

// NextIssueNo derives the next OUTWARD code from the current row count.
func NextIssueNo(ctx context.Context, q db.Querier) (string, error) {
	n, err := CountIssues(ctx, q)
	if err != nil {
		return "", err
	}
	return codegen.Next(codegen.PrefixIssue, n), nil
}
