package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = Package + ".GroupService"

const (
	GroupServiceCreateGroupProcedure          = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure             = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure           = "/" + GroupServiceName + "/ListGroups"
	GroupServiceAddMemberProcedure            = "/" + GroupServiceName + "/AddMember"
	GroupServiceDeleteGroupProcedure          = "/" + GroupServiceName + "/DeleteGroup"
	GroupServiceGetGroupBalancesProcedure     = "/" + GroupServiceName + "/GetGroupBalances"
	GroupServiceGetSpendingBreakdownProcedure = "/" + GroupServiceName + "/GetSpendingBreakdown"
	GroupServiceGetUserSummaryProcedure       = "/" + GroupServiceName + "/GetUserSummary"
)

// GroupServiceHandler is implemented by the server.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetSpendingBreakdown(context.Context, *connect.Request[api.GetSpendingBreakdownRequest]) (*connect.Response[api.GetSpendingBreakdownResponse], error)
	GetUserSummary(context.Context, *connect.Request[api.GetUserSummaryRequest]) (*connect.Response[api.GetUserSummaryResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(GroupServiceGetSpendingBreakdownProcedure, connect.NewUnaryHandler(GroupServiceGetSpendingBreakdownProcedure, svc.GetSpendingBreakdown, opts...))
	mux.Handle(GroupServiceGetUserSummaryProcedure, connect.NewUnaryHandler(GroupServiceGetUserSummaryProcedure, svc.GetUserSummary, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the settleup.v1.GroupService service.
type GroupServiceClient struct {
	createGroup          *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup             *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups           *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember            *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	deleteGroup          *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	getGroupBalances     *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getSpendingBreakdown *connect.Client[api.GetSpendingBreakdownRequest, api.GetSpendingBreakdownResponse]
	getUserSummary       *connect.Client[api.GetUserSummaryRequest, api.GetUserSummaryResponse]
}

// NewGroupServiceClient constructs a client for the settleup.v1.GroupService service.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:          connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:             connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:           connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:            connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		deleteGroup:          connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		getGroupBalances:     connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getSpendingBreakdown: connect.NewClient[api.GetSpendingBreakdownRequest, api.GetSpendingBreakdownResponse](httpClient, baseURL+GroupServiceGetSpendingBreakdownProcedure, opts...),
		getUserSummary:       connect.NewClient[api.GetUserSummaryRequest, api.GetUserSummaryResponse](httpClient, baseURL+GroupServiceGetUserSummaryProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetSpendingBreakdown(ctx context.Context, req *connect.Request[api.GetSpendingBreakdownRequest]) (*connect.Response[api.GetSpendingBreakdownResponse], error) {
	return c.getSpendingBreakdown.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetUserSummary(ctx context.Context, req *connect.Request[api.GetUserSummaryRequest]) (*connect.Response[api.GetUserSummaryResponse], error) {
	return c.getUserSummary.CallUnary(ctx, req)
}
