package api

// Amounts are decimal strings with two fraction digits, e.g. "12.50".

type Group struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   int64     `json:"createdAt"`
	Members     []*Member `json:"members,omitempty"`
}

type Member struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	JoinedAt    int64  `json:"joinedAt"`
	// NetBalance is only set by GetGroup.
	NetBalance string `json:"netBalance,omitempty"`
}

type MemberBalance struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	TotalPaid   string `json:"totalPaid"`
	TotalOwed   string `json:"totalOwed"`
	NetBalance  string `json:"netBalance"`
}

type Settlement struct {
	FromUserId string `json:"fromUserId"`
	FromName   string `json:"fromName"`
	ToUserId   string `json:"toUserId"`
	ToName     string `json:"toName"`
	Amount     string `json:"amount"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
	// CallerRole is the requesting user's role in the group.
	CallerRole string `json:"callerRole"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupId string `json:"groupId"`
	Email   string `json:"email"`
	// Role defaults to "member".
	Role string `json:"role,omitempty"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type DeleteGroupRequest struct {
	GroupId string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	GroupId     string           `json:"groupId"`
	TotalSpent  string           `json:"totalSpent"`
	Balances    []*MemberBalance `json:"balances"`
	Settlements []*Settlement    `json:"settlements"`
	// Imbalance is non-zero only when the balances did not net to zero and
	// the server settles the difference through the suspense party.
	Imbalance string `json:"imbalance"`
	Residual  string `json:"residual"`
}

type CategorySpending struct {
	CategoryId string  `json:"categoryId"`
	Name       string  `json:"name"`
	Total      string  `json:"total"`
	Count      int32   `json:"count"`
	Percent    float64 `json:"percent"`
}

type GetSpendingBreakdownRequest struct {
	GroupId string `json:"groupId"`
}

type GetSpendingBreakdownResponse struct {
	GroupId    string              `json:"groupId"`
	Total      string              `json:"total"`
	Categories []*CategorySpending `json:"categories"`
}

type GroupBalance struct {
	GroupId    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	NetBalance string `json:"netBalance"`
}

type GetUserSummaryRequest struct{}

type GetUserSummaryResponse struct {
	UserId     string          `json:"userId"`
	NetBalance string          `json:"netBalance"`
	Groups     []*GroupBalance `json:"groups"`
}
