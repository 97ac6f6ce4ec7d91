package service

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/categorizer"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		Id:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func groupToAPI(g *models.Group, members []models.Member) *api.Group {
	out := &api.Group{
		Id:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
	for i := range members {
		out.Members = append(out.Members, memberToAPI(&members[i]))
	}
	return out
}

func memberToAPI(m *models.Member) *api.Member {
	return &api.Member{
		UserId:      m.UserID,
		DisplayName: m.Name,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

func balanceToAPI(b calculator.MemberBalance) *api.MemberBalance {
	return &api.MemberBalance{
		UserId:      b.MemberID,
		DisplayName: b.MemberName,
		TotalPaid:   b.TotalPaid.String(),
		TotalOwed:   b.TotalOwed.String(),
		NetBalance:  b.NetBalance.String(),
	}
}

func settlementToAPI(s calculator.Settlement) *api.Settlement {
	return &api.Settlement{
		FromUserId: s.FromID,
		FromName:   s.FromName,
		ToUserId:   s.ToID,
		ToName:     s.ToName,
		Amount:     s.Amount.String(),
	}
}

func categoryToAPI(c categorizer.Category) *api.Category {
	return &api.Category{
		Id:            c.ID,
		Name:          c.Name,
		Subcategories: c.Subcategories,
	}
}

// expenseToAPI renders an expense; names maps user IDs to display names.
func expenseToAPI(e *models.Expense, names map[string]string) *api.Expense {
	out := &api.Expense{
		Id:           e.ID,
		GroupId:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount.String(),
		PayerId:      e.PayerID,
		PayerName:    names[e.PayerID],
		CategoryId:   e.CategoryID,
		CategoryName: categorizer.Label(e.CategoryID),
		SplitCount:   int32(e.SplitCount),
		CreatedAt:    e.CreatedAt,
	}
	if len(e.Splits) > 0 {
		// The first share is the largest; later shares differ by at most a cent.
		out.PerPerson = e.Splits[0].Amount.String()
	}
	for _, sp := range e.Splits {
		out.Splits = append(out.Splits, &api.ExpenseSplit{
			UserId:      sp.UserID,
			DisplayName: names[sp.UserID],
			Amount:      sp.Amount.String(),
		})
	}
	return out
}
