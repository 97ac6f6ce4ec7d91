package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/pkg/api"
)

func TestGroupService_CreateAndGet(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")

	created, err := alice.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:        "  Trip to Lisbon ",
		Description: "May 2026",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := created.Msg.Group
	if group.Name != "Trip to Lisbon" {
		t.Errorf("Name = %q, want trimmed", group.Name)
	}
	if group.CreatedBy != alice.user.Id {
		t.Errorf("CreatedBy = %s, want %s", group.CreatedBy, alice.user.Id)
	}
	if len(group.Members) != 1 || group.Members[0].Role != "admin" {
		t.Fatalf("expected creator as sole admin, got %+v", group.Members)
	}

	got, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupId: group.Id}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.CallerRole != "admin" {
		t.Errorf("CallerRole = %q, want admin", got.Msg.CallerRole)
	}
	if got.Msg.Group.Description != "May 2026" {
		t.Errorf("Description = %q", got.Msg.Group.Description)
	}
	if len(got.Msg.Group.Members) != 1 || got.Msg.Group.Members[0].NetBalance != "0.00" {
		t.Errorf("unexpected members %+v", got.Msg.Group.Members)
	}

	_, err = alice.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGroupService_Access(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")

	groupID := newGroup(t, "Flat", alice, bob)

	t.Run("non-member cannot read", func(t *testing.T) {
		_, err := carol.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
		_, err = carol.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupId: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupId: "does-not-exist"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("missing group id", func(t *testing.T) {
		_, err := alice.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.anonGrps.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("only admins add members", func(t *testing.T) {
		_, err := bob.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: carol.user.Email}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("add member errors", func(t *testing.T) {
		_, err := alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: "nobody@example.com"}))
		assertCode(t, err, connect.CodeNotFound)
		_, err = alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: bob.user.Email}))
		assertCode(t, err, connect.CodeAlreadyExists)
		_, err = alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: carol.user.Email, Role: "owner"}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("admin role", func(t *testing.T) {
		resp, err := alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: carol.user.Email, Role: "Admin"}))
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if resp.Msg.Member.Role != "admin" || resp.Msg.Member.DisplayName != "Carol" {
			t.Errorf("unexpected member %+v", resp.Msg.Member)
		}
	})

	t.Run("list groups", func(t *testing.T) {
		resp, err := bob.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].Id != groupID {
			t.Errorf("unexpected groups %+v", resp.Msg.Groups)
		}
	})

	t.Run("delete", func(t *testing.T) {
		_, err := bob.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupId: groupID}))
		assertCode(t, err, connect.CodePermissionDenied)

		if _, err := alice.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupId: groupID})); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		_, err = alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestGroupService_GetGroupBalances(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	c := env.register(t, "c@example.com", "C")
	d := env.register(t, "d@example.com", "D")
	groupID := newGroup(t, "Four", a, b, c, d)

	addExpense(t, a, groupID, "Groceries", "100.00", a, b, c, d)

	resp, err := b.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	msg := resp.Msg

	if msg.TotalSpent != "100.00" {
		t.Errorf("TotalSpent = %s, want 100.00", msg.TotalSpent)
	}
	wantNet := []struct{ id, net string }{
		{a.user.Id, "75.00"},
		{b.user.Id, "-25.00"},
		{c.user.Id, "-25.00"},
		{d.user.Id, "-25.00"},
	}
	if len(msg.Balances) != len(wantNet) {
		t.Fatalf("got %d balances, want %d", len(msg.Balances), len(wantNet))
	}
	for i, w := range wantNet {
		if msg.Balances[i].UserId != w.id || msg.Balances[i].NetBalance != w.net {
			t.Errorf("balance %d = %s %s, want %s %s", i, msg.Balances[i].UserId, msg.Balances[i].NetBalance, w.id, w.net)
		}
	}

	wantFrom := []string{b.user.Id, c.user.Id, d.user.Id}
	if len(msg.Settlements) != len(wantFrom) {
		t.Fatalf("got %d settlements, want %d: %+v", len(msg.Settlements), len(wantFrom), msg.Settlements)
	}
	for i, from := range wantFrom {
		s := msg.Settlements[i]
		if s.FromUserId != from || s.ToUserId != a.user.Id || s.Amount != "25.00" {
			t.Errorf("settlement %d = %s->%s %s", i, s.FromName, s.ToName, s.Amount)
		}
	}
	if msg.Imbalance != "0.00" || msg.Residual != "0.00" {
		t.Errorf("Imbalance = %s, Residual = %s, want zero", msg.Imbalance, msg.Residual)
	}

	assertMetric(t, env, "settleup_settlement_plans_computed_total 1")
}

func TestGroupService_UnevenSplitStaysExact(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	c := env.register(t, "c@example.com", "C")
	groupID := newGroup(t, "Three", a, b, c)

	addExpense(t, b, groupID, "Dinner", "10.00", a, b, c)

	resp, err := a.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	// A carries the extra cent: 3.34 owed, B is owed 10.00 - 3.33.
	want := map[string]string{a.user.Id: "-3.34", b.user.Id: "6.67", c.user.Id: "-3.33"}
	for _, bal := range resp.Msg.Balances {
		if bal.NetBalance != want[bal.UserId] {
			t.Errorf("%s net = %s, want %s", bal.DisplayName, bal.NetBalance, want[bal.UserId])
		}
	}
	if len(resp.Msg.Settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %+v", resp.Msg.Settlements)
	}
	if s := resp.Msg.Settlements[0]; s.FromUserId != a.user.Id || s.Amount != "3.34" {
		t.Errorf("first settlement = %s %s, want A 3.34", s.FromName, s.Amount)
	}
}

func TestGroupService_GetSpendingBreakdown(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")
	groupID := newGroup(t, "Holiday", a, b)

	addExpense(t, a, groupID, "Dinner at restaurant", "80.00", a, b)
	addExpense(t, b, groupID, "Lunch", "20.00", a, b)
	addExpense(t, a, groupID, "flight to Paris", "300.00", a, b)

	resp, err := b.groups.GetSpendingBreakdown(ctx, connect.NewRequest(&api.GetSpendingBreakdownRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetSpendingBreakdown failed: %v", err)
	}
	if resp.Msg.Total != "400.00" {
		t.Errorf("Total = %s, want 400.00", resp.Msg.Total)
	}
	cats := resp.Msg.Categories
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %+v", cats)
	}
	if cats[0].CategoryId != "travel" || cats[0].Total != "300.00" || cats[0].Percent != 75 {
		t.Errorf("first category = %+v", cats[0])
	}
	if cats[1].CategoryId != "food" || cats[1].Count != 2 || cats[1].Percent != 25 {
		t.Errorf("second category = %+v", cats[1])
	}
}

func TestGroupService_GetUserSummary(t *testing.T) {
	env := setupTestServer(t, calculator.DefaultSettleOptions())
	ctx := context.Background()
	a := env.register(t, "a@example.com", "A")
	b := env.register(t, "b@example.com", "B")

	trip := newGroup(t, "Trip", a, b)
	flat := newGroup(t, "Flat", a, b)
	empty := newGroup(t, "Empty", a)

	addExpense(t, a, trip, "Hotel", "100.00", a, b)
	addExpense(t, b, flat, "Internet bill", "30.00", a, b)

	resp, err := a.groups.GetUserSummary(ctx, connect.NewRequest(&api.GetUserSummaryRequest{}))
	if err != nil {
		t.Fatalf("GetUserSummary failed: %v", err)
	}
	// +50.00 in Trip, -15.00 in Flat.
	if resp.Msg.NetBalance != "35.00" {
		t.Errorf("NetBalance = %s, want 35.00", resp.Msg.NetBalance)
	}
	want := map[string]string{trip: "50.00", flat: "-15.00", empty: "0.00"}
	if len(resp.Msg.Groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(resp.Msg.Groups), len(want))
	}
	for _, g := range resp.Msg.Groups {
		if g.NetBalance != want[g.GroupId] {
			t.Errorf("%s = %s, want %s", g.GroupName, g.NetBalance, want[g.GroupId])
		}
	}
}
