package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/categorizer"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// maxDescriptionLength bounds expense descriptions, in characters.
const maxDescriptionLength = 200

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewExpenseService creates an ExpenseService. Created expenses are announced
// on publisher; m may be nil.
func NewExpenseService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *ExpenseService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ExpenseService{store: store, publisher: publisher, metrics: m, logger: logger}
}

// PreviewSplit shows how an amount would be divided, without writing anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "PreviewSplit", err)
	}
	participants := dedupe(req.Msg.ParticipantIds)

	shares, err := calculator.DistributeCents(amount, len(participants))
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "PreviewSplit", err)
	}

	names, err := s.displayNames(ctx, participants)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "PreviewSplit", err)
	}

	resp := &api.PreviewSplitResponse{Splits: make([]*api.ExpenseSplit, len(shares))}
	for i, share := range shares {
		resp.Splits[i] = &api.ExpenseSplit{
			UserId:      participants[i],
			DisplayName: names[participants[i]],
			Amount:      share.String(),
		}
	}
	return connect.NewResponse(resp), nil
}

// CreateExpense records an expense split evenly among its participants.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateExpense", err)
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if len([]rune(description)) > maxDescriptionLength {
		return nil, invalidArgument("description exceeds %d characters", maxDescriptionLength)
	}
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateExpense", err)
	}
	if !amount.IsPositive() {
		return nil, invalidArgument("amount must be positive, got %s", amount)
	}
	participants := dedupe(req.Msg.ParticipantIds)
	if len(participants) == 0 {
		return nil, invalidArgument("at least one participant is required")
	}

	members, err := s.store.ListMembers(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateExpense", err)
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}
	payerID := req.Msg.PayerId
	if payerID == "" {
		payerID = userID
	}
	if _, ok := names[payerID]; !ok {
		return nil, invalidArgument("payer %s is not a member of the group", payerID)
	}
	for _, p := range participants {
		if _, ok := names[p]; !ok {
			return nil, invalidArgument("participant %s is not a member of the group", p)
		}
	}

	shares, err := calculator.DistributeCents(amount, len(participants))
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateExpense", err)
	}

	category := categorizer.Categorize(description)
	expense := &models.Expense{
		GroupID:     req.Msg.GroupId,
		Description: description,
		Amount:      amount,
		PayerID:     payerID,
		SplitCount:  len(participants),
		CategoryID:  category.ID,
		Splits:      make([]models.ExpenseSplit, len(participants)),
	}
	for i, p := range participants {
		expense.Splits[i] = models.ExpenseSplit{UserID: p, Amount: shares[i]}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateExpense", err)
	}
	s.metrics.ExpenseCreated(category.ID)
	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"participants", expense.SplitCount,
		"category", category.ID,
	)

	s.announce(ctx, expense, participants)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense, names)}), nil
}

// announce publishes expense.created. The expense is already committed, so a
// broker failure is logged and counted but does not fail the request.
func (s *ExpenseService) announce(ctx context.Context, e *models.Expense, participants []string) {
	err := s.publisher.Publish(ctx, events.TopicExpenseCreated, events.ExpenseCreated{
		ExpenseID:      e.ID,
		GroupID:        e.GroupID,
		Description:    e.Description,
		Amount:         e.Amount.String(),
		PayerID:        e.PayerID,
		ParticipantIDs: participants,
		CategoryID:     e.CategoryID,
		CreatedAt:      e.CreatedAt,
	})
	if err != nil {
		s.metrics.PublishFailed(events.TopicExpenseCreated)
		s.logger.WarnContext(ctx, "Failed to publish expense event", "expense_id", e.ID, "error", err)
	}
}

// ListExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "ListExpenses", err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "ListExpenses", err)
	}
	names, err := s.groupNames(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "ListExpenses", err)
	}

	resp := &api.ListExpensesResponse{Expenses: make([]*api.Expense, len(expenses))}
	for i := range expenses {
		resp.Expenses[i] = expenseToAPI(&expenses[i], names)
	}
	return connect.NewResponse(resp), nil
}

// GetExpense returns one expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ExpenseId == "" {
		return nil, invalidArgument("expense_id is required")
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetExpense", err)
	}
	if _, err := membership(ctx, s.store, expense.GroupID, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "GetExpense", err)
	}
	names, err := s.groupNames(ctx, expense.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetExpense", err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: expenseToAPI(expense, names)}), nil
}

// CategorizeDescription returns the category a description would get, plus
// suggestions for the text typed so far.
func (s *ExpenseService) CategorizeDescription(ctx context.Context, req *connect.Request[api.CategorizeDescriptionRequest]) (*connect.Response[api.CategorizeDescriptionResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	resp := &api.CategorizeDescriptionResponse{
		Category: categoryToAPI(categorizer.Categorize(req.Msg.Description)),
	}
	for _, c := range categorizer.Suggest(req.Msg.Description, int(req.Msg.Limit)) {
		resp.Suggestions = append(resp.Suggestions, categoryToAPI(c))
	}
	return connect.NewResponse(resp), nil
}

func (s *ExpenseService) groupNames(ctx context.Context, groupID string) (map[string]string, error) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}
	return names, nil
}

func (s *ExpenseService) displayNames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.DisplayName
	}
	return names, nil
}

// dedupe drops blank and repeated IDs, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
