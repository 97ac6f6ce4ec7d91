package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/pkg/api"
)

func TestExpenseService_PreviewSplit(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	c := env.register(t, "c@example.com", "C")

	resp, err := a.expenses.PreviewSplit(ctx, connect.NewRequest(&api.PreviewSplitRequest{
		Amount:         "10.00",
		ParticipantIds: []string{a.user.Id, b.user.Id, c.user.Id, a.user.Id},
	}))
	if err != nil {
		t.Fatalf("PreviewSplit failed: %v", err)
	}
	want := []struct{ name, amount string }{{"A", "3.34"}, {"B", "3.33"}, {"C", "3.33"}}
	if len(resp.Msg.Splits) != len(want) {
		t.Fatalf("got %d splits, want %d", len(resp.Msg.Splits), len(want))
	}
	for i, w := range want {
		if resp.Msg.Splits[i].DisplayName != w.name || resp.Msg.Splits[i].Amount != w.amount {
			t.Errorf("split %d = %s %s, want %s %s", i, resp.Msg.Splits[i].DisplayName, resp.Msg.Splits[i].Amount, w.name, w.amount)
		}
	}

	for _, amount := range []string{"abc", "-1.00", ""} {
		_, err := a.expenses.PreviewSplit(ctx, connect.NewRequest(&api.PreviewSplitRequest{
			Amount:         amount,
			ParticipantIds: []string{a.user.Id},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	}

	empty, err := a.expenses.PreviewSplit(ctx, connect.NewRequest(&api.PreviewSplitRequest{Amount: "5.00"}))
	if err != nil {
		t.Fatalf("PreviewSplit with no participants failed: %v", err)
	}
	if len(empty.Msg.Splits) != 0 {
		t.Errorf("expected no splits, got %+v", empty.Msg.Splits)
	}
}

func TestExpenseService_CreateExpense(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	groupID := newGroup(t, "Trip", a, b)

	expense := addExpense(t, a, groupID, "  flight to Paris ", "300.00", a, b)
	if expense.Description != "flight to Paris" {
		t.Errorf("Description = %q, want trimmed", expense.Description)
	}
	if expense.CategoryId != "travel" || expense.CategoryName != "Travel" {
		t.Errorf("category = %s/%s, want travel", expense.CategoryId, expense.CategoryName)
	}
	if expense.PayerName != "A" || expense.SplitCount != 2 || expense.PerPerson != "150.00" {
		t.Errorf("unexpected expense %+v", expense)
	}
	if len(expense.Splits) != 2 || expense.Splits[1].DisplayName != "B" {
		t.Errorf("unexpected splits %+v", expense.Splits)
	}

	published := env.events.Events(events.TopicExpenseCreated)
	if len(published) != 1 {
		t.Fatalf("expected 1 expense.created event, got %d", len(published))
	}
	event, ok := published[0].Event.(events.ExpenseCreated)
	if !ok {
		t.Fatalf("event has type %T", published[0].Event)
	}
	if event.ExpenseID != expense.Id || event.GroupID != groupID || event.Amount != "300.00" {
		t.Errorf("unexpected event %+v", event)
	}
	if len(event.ParticipantIDs) != 2 || event.CategoryID != "travel" {
		t.Errorf("unexpected event participants or category %+v", event)
	}
	assertMetric(t, env, `settleup_expenses_created_total{category="travel"} 1`)

	got, err := b.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseId: expense.Id}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.Amount != "300.00" || len(got.Msg.Expense.Splits) != 2 {
		t.Errorf("unexpected expense %+v", got.Msg.Expense)
	}
}

func TestExpenseService_CreateExpenseDefaultsPayerToCaller(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	groupID := newGroup(t, "Flat", a, b)

	resp, err := b.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupId:        groupID,
		Description:    "Coffee",
		Amount:         "4.50",
		ParticipantIds: []string{a.user.Id, b.user.Id},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if resp.Msg.Expense.PayerId != b.user.Id {
		t.Errorf("PayerId = %s, want caller %s", resp.Msg.Expense.PayerId, b.user.Id)
	}
}

func TestExpenseService_CreateExpenseValidation(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	outsider := env.register(t, "x@example.com", "X")
	groupID := newGroup(t, "Trip", a, b)

	valid := func() *api.CreateExpenseRequest {
		return &api.CreateExpenseRequest{
			GroupId:        groupID,
			Description:    "Taxi",
			Amount:         "12.00",
			PayerId:        a.user.Id,
			ParticipantIds: []string{a.user.Id, b.user.Id},
		}
	}

	tests := []struct {
		name   string
		mutate func(*api.CreateExpenseRequest)
		want   connect.Code
	}{
		{"blank description", func(r *api.CreateExpenseRequest) { r.Description = "  " }, connect.CodeInvalidArgument},
		{"long description", func(r *api.CreateExpenseRequest) { r.Description = strings.Repeat("x", 201) }, connect.CodeInvalidArgument},
		{"zero amount", func(r *api.CreateExpenseRequest) { r.Amount = "0" }, connect.CodeInvalidArgument},
		{"negative amount", func(r *api.CreateExpenseRequest) { r.Amount = "-3.00" }, connect.CodeInvalidArgument},
		{"malformed amount", func(r *api.CreateExpenseRequest) { r.Amount = "twelve" }, connect.CodeInvalidArgument},
		{"thousands separator", func(r *api.CreateExpenseRequest) { r.Amount = "1,234" }, connect.CodeInvalidArgument},
		{"sub-cent amount", func(r *api.CreateExpenseRequest) { r.Amount = "12.345" }, connect.CodeInvalidArgument},
		{"no participants", func(r *api.CreateExpenseRequest) { r.ParticipantIds = nil }, connect.CodeInvalidArgument},
		{"outsider participant", func(r *api.CreateExpenseRequest) { r.ParticipantIds = []string{a.user.Id, outsider.user.Id} }, connect.CodeInvalidArgument},
		{"outsider payer", func(r *api.CreateExpenseRequest) { r.PayerId = outsider.user.Id }, connect.CodeInvalidArgument},
		{"unknown group", func(r *api.CreateExpenseRequest) { r.GroupId = "missing" }, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			_, err := a.expenses.CreateExpense(ctx, connect.NewRequest(req))
			assertCode(t, err, tt.want)
		})
	}

	t.Run("non-member caller", func(t *testing.T) {
		_, err := outsider.expenses.CreateExpense(ctx, connect.NewRequest(valid()))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	if n := len(env.events.Events("")); n != 0 {
		t.Errorf("rejected expenses published %d events", n)
	}
}

func TestExpenseService_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	a := env.register(t, "a@example.com", "A")
	groupID := newGroup(t, "Solo", a)

	env.events.Err = errors.New("broker down")
	expense := addExpense(t, a, groupID, "Movie night", "20.00", a)
	if expense.Id == "" {
		t.Fatal("expense was not created")
	}
	assertMetric(t, env, `settleup_event_publish_failures_total{topic="expense.created"} 1`)
}

func TestExpenseService_ListAndGet(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	outsider := env.register(t, "x@example.com", "X")
	groupID := newGroup(t, "Trip", a, b)

	first := addExpense(t, a, groupID, "Breakfast", "12.00", a, b)
	second := addExpense(t, b, groupID, "Museum tour", "30.00", a, b)

	resp, err := a.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(resp.Msg.Expenses))
	}
	if resp.Msg.Expenses[0].Id != second.Id || resp.Msg.Expenses[1].Id != first.Id {
		t.Errorf("expenses not newest first")
	}
	if resp.Msg.Expenses[0].PayerName != "B" {
		t.Errorf("PayerName = %q, want B", resp.Msg.Expenses[0].PayerName)
	}

	_, err = outsider.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupId: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
	_, err = outsider.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseId: first.Id}))
	assertCode(t, err, connect.CodePermissionDenied)
	_, err = a.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseId: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
	_, err = a.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestExpenseService_CategorizeDescription(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")

	resp, err := a.expenses.CategorizeDescription(ctx, connect.NewRequest(&api.CategorizeDescriptionRequest{Description: "gas"}))
	if err != nil {
		t.Fatalf("CategorizeDescription failed: %v", err)
	}
	if resp.Msg.Category.Id != "transportation" {
		t.Errorf("Category = %s, want transportation", resp.Msg.Category.Id)
	}
	if len(resp.Msg.Suggestions) != 2 || resp.Msg.Suggestions[1].Id != "utilities" {
		t.Errorf("unexpected suggestions %+v", resp.Msg.Suggestions)
	}

	resp, err = a.expenses.CategorizeDescription(ctx, connect.NewRequest(&api.CategorizeDescriptionRequest{Description: "xyz123"}))
	if err != nil {
		t.Fatalf("CategorizeDescription failed: %v", err)
	}
	if resp.Msg.Category.Id != "other" || resp.Msg.Category.Name != "Other" {
		t.Errorf("Category = %+v, want other", resp.Msg.Category)
	}

	_, err = env.anonExp.CategorizeDescription(ctx, connect.NewRequest(&api.CategorizeDescriptionRequest{Description: "gas"}))
	assertCode(t, err, connect.CodeUnauthenticated)
}
