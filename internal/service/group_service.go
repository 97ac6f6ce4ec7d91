package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/categorizer"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store   storage.Store
	opts    calculator.SettleOptions
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGroupService creates a GroupService. opts controls how settlement plans
// treat ledgers that do not net to zero; m may be nil.
func NewGroupService(store storage.Store, opts calculator.SettleOptions, m *metrics.Metrics, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, opts: opts, metrics: m, logger: logger}
}

// CreateGroup creates a group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}

	creator, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateGroup", err)
	}

	group := &models.Group{Name: name, Description: strings.TrimSpace(req.Msg.Description)}
	if err := s.store.CreateGroup(ctx, group, creator); err != nil {
		return nil, toConnectError(ctx, s.logger, "CreateGroup", err)
	}

	s.logger.InfoContext(ctx, "Group created", "group_id", group.ID, "user_id", userID)
	members := []models.Member{{
		GroupID:  group.ID,
		UserID:   creator.ID,
		Name:     creator.DisplayName,
		Role:     models.RoleAdmin,
		JoinedAt: group.CreatedAt,
	}}
	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group, members)}), nil
}

// GetGroup returns a group with its members and their current balances.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := membership(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetGroup", err)
	}

	l, err := s.store.GroupLedger(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetGroup", err)
	}

	net := make(map[string]money.Cents, len(l.Members))
	for _, b := range ledger.Balances(l) {
		net[b.MemberID] = b.NetBalance
	}
	group := groupToAPI(l.Group, l.Members)
	for _, m := range group.Members {
		m.NetBalance = net[m.UserId].String()
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: group, CallerRole: string(caller.Role)}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, _ *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i := range groups {
		out[i] = groupToAPI(&groups[i], nil)
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a registered user, found by email, to the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "AddMember", err)
	}

	email, err := auth.NormalizeEmail(req.Msg.Email)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	role := models.RoleMember
	if req.Msg.Role != "" {
		role = models.Role(strings.ToLower(req.Msg.Role))
	}
	if !role.Valid() {
		return nil, invalidArgument("unknown role %q", req.Msg.Role)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "AddMember", err)
	}

	member := &models.Member{GroupID: req.Msg.GroupId, UserID: user.ID, Name: user.DisplayName, Role: role}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, toConnectError(ctx, s.logger, "AddMember", err)
	}

	s.logger.InfoContext(ctx, "Member added", "group_id", member.GroupID, "member_id", member.UserID, "role", role)
	return connect.NewResponse(&api.AddMemberResponse{Member: memberToAPI(member)}), nil
}

// DeleteGroup removes a group with all its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "DeleteGroup", err)
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupId); err != nil {
		return nil, toConnectError(ctx, s.logger, "DeleteGroup", err)
	}

	s.logger.InfoContext(ctx, "Group deleted", "group_id", req.Msg.GroupId, "user_id", userID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances returns every member's balance and the suggested
// transfers that settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "GetGroupBalances", err)
	}

	l, err := s.store.GroupLedger(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetGroupBalances", err)
	}

	summary, err := ledger.Summarize(l, s.opts)
	var imbalance *calculator.ImbalanceError
	if errors.As(err, &imbalance) {
		s.metrics.Imbalance(s.opts.Policy.String())
	}
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetGroupBalances", err)
	}
	if summary.Plan.Imbalance.Abs() > s.opts.Tolerance {
		s.metrics.Imbalance(s.opts.Policy.String())
		s.logger.WarnContext(ctx, "Settled imbalance through suspense",
			"group_id", l.Group.ID,
			"imbalance", summary.Plan.Imbalance,
		)
	}
	s.metrics.PlanComputed(len(summary.Plan.Settlements))

	resp := &api.GetGroupBalancesResponse{
		GroupId:     l.Group.ID,
		TotalSpent:  summary.TotalSpent.String(),
		Balances:    make([]*api.MemberBalance, len(summary.Balances)),
		Settlements: make([]*api.Settlement, len(summary.Plan.Settlements)),
		Imbalance:   money.Zero.String(),
		Residual:    summary.Plan.Residual.String(),
	}
	if summary.Plan.Imbalance.Abs() > s.opts.Tolerance {
		resp.Imbalance = summary.Plan.Imbalance.String()
	}
	for i, b := range summary.Balances {
		resp.Balances[i] = balanceToAPI(b)
	}
	for i, st := range summary.Plan.Settlements {
		resp.Settlements[i] = settlementToAPI(st)
	}
	return connect.NewResponse(resp), nil
}

// GetSpendingBreakdown groups the group's spending by category.
func (s *GroupService) GetSpendingBreakdown(ctx context.Context, req *connect.Request[api.GetSpendingBreakdownRequest]) (*connect.Response[api.GetSpendingBreakdownResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := membership(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "GetSpendingBreakdown", err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetSpendingBreakdown", err)
	}

	entries := make([]categorizer.Entry, len(expenses))
	for i, e := range expenses {
		entries[i] = categorizer.Entry{Description: e.Description, Amount: e.Amount}
	}
	totals := categorizer.AnalyzeSpending(entries)
	grand := categorizer.GrandTotal(totals)

	resp := &api.GetSpendingBreakdownResponse{
		GroupId:    req.Msg.GroupId,
		Total:      grand.String(),
		Categories: make([]*api.CategorySpending, len(totals)),
	}
	for i, ct := range totals {
		resp.Categories[i] = &api.CategorySpending{
			CategoryId: ct.Category.ID,
			Name:       ct.Category.Name,
			Total:      ct.Total.String(),
			Count:      int32(ct.Count),
			Percent:    ct.Share(grand),
		}
	}
	return connect.NewResponse(resp), nil
}

// GetUserSummary returns the caller's net balance overall and per group.
func (s *GroupService) GetUserSummary(ctx context.Context, _ *connect.Request[api.GetUserSummaryRequest]) (*connect.Response[api.GetUserSummaryResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetUserSummary", err)
	}
	ul, err := s.store.UserLedger(ctx, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "GetUserSummary", err)
	}

	expenses, splits := ledger.Inputs(ul.Expenses)
	total, perGroup := calculator.OverallBalance(userID, expenses, splits)
	net := make(map[string]money.Cents, len(perGroup))
	for _, g := range perGroup {
		net[g.GroupID] = g.NetBalance
	}

	resp := &api.GetUserSummaryResponse{
		UserId:     userID,
		NetBalance: total.String(),
		Groups:     make([]*api.GroupBalance, len(groups)),
	}
	for i, g := range groups {
		resp.Groups[i] = &api.GroupBalance{
			GroupId:    g.ID,
			GroupName:  g.Name,
			NetBalance: net[g.ID].String(),
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID string) error {
	m, err := membership(ctx, s.store, groupID, userID)
	if err != nil {
		return err
	}
	if !m.IsAdmin() {
		return errNotAdmin
	}
	return nil
}
