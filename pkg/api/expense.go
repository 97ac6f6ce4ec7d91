package api

type ExpenseSplit struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Amount      string `json:"amount"`
}

type Expense struct {
	Id           string          `json:"id"`
	GroupId      string          `json:"groupId"`
	Description  string          `json:"description"`
	Amount       string          `json:"amount"`
	PayerId      string          `json:"payerId"`
	PayerName    string          `json:"payerName,omitempty"`
	CategoryId   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	SplitCount   int32           `json:"splitCount"`
	PerPerson    string          `json:"perPerson"`
	CreatedAt    int64           `json:"createdAt"`
	Splits       []*ExpenseSplit `json:"splits,omitempty"`
}

type Category struct {
	Id            string   `json:"id"`
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}

type PreviewSplitRequest struct {
	Amount         string   `json:"amount"`
	ParticipantIds []string `json:"participantIds"`
}

type PreviewSplitResponse struct {
	Splits []*ExpenseSplit `json:"splits"`
}

type CreateExpenseRequest struct {
	GroupId        string   `json:"groupId"`
	Description    string   `json:"description"`
	Amount         string   `json:"amount"`
	PayerId        string   `json:"payerId"`
	ParticipantIds []string `json:"participantIds"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupId string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type CategorizeDescriptionRequest struct {
	Description string `json:"description"`
	// Limit caps the suggestions; zero means the server default.
	Limit int32 `json:"limit,omitempty"`
}

type CategorizeDescriptionResponse struct {
	Category    *Category   `json:"category"`
	Suggestions []*Category `json:"suggestions"`
}
