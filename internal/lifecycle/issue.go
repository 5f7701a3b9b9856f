package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

// CreateIssue checks an available item out and flips it to ISSUED.
func (s *Service) CreateIssue(ctx context.Context, input CreateIssueInput) (*model.Issue, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var issue *model.Issue
	err := s.run(ctx, OpCreateIssue, func(q db.Querier) error {
		item, err := loadItem(ctx, q, input.ItemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return fmt.Errorf("item %d is inactive: %w", item.ID, model.ErrInvalidState)
		}
		next, err := item.Status.Transition(model.EventIssued)
		if err != nil {
			return err
		}

		if err := store.RequireActiveContext(ctx, q, input.Context); err != nil {
			return err
		}

		issueNo, err := store.NextIssueNo(ctx, q)
		if err != nil {
			return err
		}

		issue, err = store.CreateIssue(ctx, q, store.CreateIssueParams{
			IssueNo:      issueNo,
			ItemID:       item.ID,
			IssuedBy:     input.IssuedBy,
			Context:      input.Context,
			OperatorName: strings.TrimSpace(input.OperatorName),
			Remarks:      strings.TrimSpace(input.Remarks),
		})
		if err != nil {
			return err
		}

		return store.CompareAndSetItemStatus(ctx, q, item.ID, item.Status, next)
	})
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.log.InfoContext(ctx, "issue created",
		slog.String("issue_no", issue.IssueNo),
		slog.Int64("item_id", issue.ItemID),
		slog.Int64("issued_by", issue.IssuedBy),
	)

	return issue, nil
}

// NextIssueNo is the advisory code the next issue would get. A concurrent
// writer may still take it first.
func (s *Service) NextIssueNo(ctx context.Context) (string, error) {
	return store.NextIssueNo(ctx, s.db)
}

func loadItem(ctx context.Context, q db.Querier, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return item, nil
}
