package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = Package + ".ExpenseService"

const (
	ExpenseServicePreviewSplitProcedure          = "/" + ExpenseServiceName + "/PreviewSplit"
	ExpenseServiceCreateExpenseProcedure         = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceListExpensesProcedure          = "/" + ExpenseServiceName + "/ListExpenses"
	ExpenseServiceGetExpenseProcedure            = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceCategorizeDescriptionProcedure = "/" + ExpenseServiceName + "/CategorizeDescription"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	CategorizeDescription(context.Context, *connect.Request[api.CategorizeDescriptionRequest]) (*connect.Response[api.CategorizeDescriptionResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServicePreviewSplitProcedure, connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opts...))
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceCategorizeDescriptionProcedure, connect.NewUnaryHandler(ExpenseServiceCategorizeDescriptionProcedure, svc.CategorizeDescription, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient is a client for the settleup.v1.ExpenseService service.
type ExpenseServiceClient struct {
	previewSplit          *connect.Client[api.PreviewSplitRequest, api.PreviewSplitResponse]
	createExpense         *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	listExpenses          *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getExpense            *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	categorizeDescription *connect.Client[api.CategorizeDescriptionRequest, api.CategorizeDescriptionResponse]
}

// NewExpenseServiceClient constructs a client for the settleup.v1.ExpenseService service.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		previewSplit:          connect.NewClient[api.PreviewSplitRequest, api.PreviewSplitResponse](httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opts...),
		createExpense:         connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		listExpenses:          connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		getExpense:            connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		categorizeDescription: connect.NewClient[api.CategorizeDescriptionRequest, api.CategorizeDescriptionResponse](httpClient, baseURL+ExpenseServiceCategorizeDescriptionProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) CategorizeDescription(ctx context.Context, req *connect.Request[api.CategorizeDescriptionRequest]) (*connect.Response[api.CategorizeDescriptionResponse], error) {
	return c.categorizeDescription.CallUnary(ctx, req)
}
