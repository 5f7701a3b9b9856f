package api

import (
	"context"

	"github.com/erazemk/orodjarna/internal/lifecycle"
	"github.com/erazemk/orodjarna/internal/model"
)

// Lifecycle is the subset of the lifecycle service the handlers use.
type Lifecycle interface {
	CreateIssue(ctx context.Context, input lifecycle.CreateIssueInput) (*model.Issue, error)
	CreateReturn(ctx context.Context, input lifecycle.CreateReturnInput) (*model.Return, error)
	ReceiveMissingItem(ctx context.Context, input lifecycle.ReceiveMissingInput) (*model.Return, error)
	UpdateReturnRemarks(ctx context.Context, input lifecycle.UpdateRemarksInput) (*model.Return, error)
	NextIssueNo(ctx context.Context) (string, error)
	NextReturnCode(ctx context.Context) (string, error)
}
