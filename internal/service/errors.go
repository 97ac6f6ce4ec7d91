package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	errNotMember = errors.New("not a member of this group")
	errNotAdmin  = errors.New("only group admins can do this")
)

// toConnectError maps domain and storage errors to Connect codes. Server
// faults are logged here and returned without internal detail.
func toConnectError(ctx context.Context, logger *slog.Logger, op string, err error) error {
	var rounding *calculator.RoundingViolationError
	switch {
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrOverflow):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrDataConsistency):
		logger.ErrorContext(ctx, op+" found inconsistent ledger", "error", err)
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &rounding):
		logger.ErrorContext(ctx, op+" rounding violation", "total", rounding.Total, "sum", rounding.Sum)
		return connect.NewError(connect.CodeInternal, errors.New("internal rounding error"))
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, errNotMember), errors.Is(err, errNotAdmin):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	logger.ErrorContext(ctx, op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// membership checks that the caller belongs to the group. A missing group
// is ErrNotFound; an existing group the caller is not in is errNotMember.
func membership(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Member, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id is required", calculator.ErrInvalidInput)
	}
	if _, err := store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	m, err := store.GetMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNotMember
	}
	return m, err
}
