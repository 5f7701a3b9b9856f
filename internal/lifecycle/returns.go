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

// CreateReturn closes an open issue. The recorded condition decides whether
// the item goes back to AVAILABLE or becomes MISSING.
func (s *Service) CreateReturn(ctx context.Context, input CreateReturnInput) (*model.Return, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	cond, _ := model.ParseCondition(input.Condition)

	var ret *model.Return
	var next model.ItemStatus
	err := s.run(ctx, OpCreateReturn, func(q db.Querier) error {
		issue, err := store.GetIssue(ctx, q, input.IssueID)
		if err != nil {
			return err
		}
		if issue == nil {
			return fmt.Errorf("issue %d: %w", input.IssueID, model.ErrNotFound)
		}
		if issue.IsReturned {
			return fmt.Errorf("issue %s already returned: %w", issue.IssueNo, model.ErrInvalidState)
		}

		item, err := loadItem(ctx, q, issue.ItemID)
		if err != nil {
			return err
		}
		next, err = item.Status.Transition(cond.ReturnEvent())
		if err != nil {
			return err
		}

		code, err := store.NextReturnCode(ctx, q)
		if err != nil {
			return err
		}

		ret, err = store.CreateReturn(ctx, q, store.CreateReturnParams{
			ReturnCode: code,
			Provenance: model.FromIssue(issue.ID),
			Condition:  cond,
			ReturnedBy: input.ReturnedBy,
			ImagePath:  strings.TrimSpace(input.ImagePath),
			ReceivedBy: strings.TrimSpace(input.ReceivedBy),
			Remarks:    strings.TrimSpace(input.Remarks),
		})
		if err != nil {
			return err
		}

		if err := store.MarkIssueReturned(ctx, q, issue.ID); err != nil {
			return err
		}

		return store.CompareAndSetItemStatus(ctx, q, item.ID, item.Status, next)
	})
	if err != nil {
		return nil, fmt.Errorf("create return: %w", err)
	}

	s.log.InfoContext(ctx, "return created",
		slog.String("return_code", ret.ReturnCode),
		slog.String("issue_no", ret.IssueNo),
		slog.String("condition", string(cond)),
		slog.String("item_status", string(next)),
	)

	return ret, nil
}

// ReceiveMissingItem records a missing item turning up again and puts it
// back in stock. There is no issue to close.
func (s *Service) ReceiveMissingItem(ctx context.Context, input ReceiveMissingInput) (*model.Return, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	cond, _ := model.ParseCondition(input.Condition)

	var ret *model.Return
	err := s.run(ctx, OpReceiveMissing, func(q db.Querier) error {
		item, err := loadItem(ctx, q, input.ItemID)
		if err != nil {
			return err
		}
		next, err := item.Status.Transition(model.EventReceived)
		if err != nil {
			return err
		}

		if err := store.RequireActiveContext(ctx, q, input.Context); err != nil {
			return err
		}

		code, err := store.NextReturnCode(ctx, q)
		if err != nil {
			return err
		}

		ret, err = store.CreateReturn(ctx, q, store.CreateReturnParams{
			ReturnCode: code,
			Provenance: model.DirectReceipt(item.ID),
			Condition:  cond,
			ReturnedBy: input.ReturnedBy,
			ImagePath:  strings.TrimSpace(input.ImagePath),
			ReceivedBy: strings.TrimSpace(input.ReceivedBy),
			Remarks:    strings.TrimSpace(input.Remarks),
			Context:    input.Context,
		})
		if err != nil {
			return err
		}

		return store.CompareAndSetItemStatus(ctx, q, item.ID, item.Status, next)
	})
	if err != nil {
		return nil, fmt.Errorf("receive missing item: %w", err)
	}

	s.log.InfoContext(ctx, "missing item received",
		slog.String("return_code", ret.ReturnCode),
		slog.Int64("item_id", input.ItemID),
		slog.String("condition", string(cond)),
	)

	return ret, nil
}

// UpdateReturnRemarks corrects who received a return and its remarks. The
// item, issue and condition are left alone.
func (s *Service) UpdateReturnRemarks(ctx context.Context, input UpdateRemarksInput) (*model.Return, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var ret *model.Return
	err := s.run(ctx, OpUpdateRemarks, func(q db.Querier) error {
		err := store.UpdateReturnRemarks(ctx, q, input.ReturnID,
			strings.TrimSpace(input.ReceivedBy), strings.TrimSpace(input.Remarks))
		if err != nil {
			return err
		}
		ret, err = store.GetReturn(ctx, q, input.ReturnID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update return remarks: %w", err)
	}

	s.log.InfoContext(ctx, "return remarks updated", slog.String("return_code", ret.ReturnCode))
	return ret, nil
}

// NextReturnCode is the advisory code the next return would get.
func (s *Service) NextReturnCode(ctx context.Context) (string, error) {
	return store.NextReturnCode(ctx, s.db)
}
