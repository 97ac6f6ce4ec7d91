package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// testEnv is a full server on a temporary database.
type testEnv struct {
	url      string
	store    *sqlite.SQLiteStore
	events   *events.Recorder
	metrics  *metrics.Metrics
	anon     *apiconnect.AuthServiceClient
	anonExp  *apiconnect.ExpenseServiceClient
	anonGrps *apiconnect.GroupServiceClient
}

// session is a registered user with authenticated clients.
type session struct {
	user     *api.User
	token    string
	auth     *apiconnect.AuthServiceClient
	groups   *apiconnect.GroupServiceClient
	expenses *apiconnect.ExpenseServiceClient
}

func setupTestServer(t *testing.T, opts calculator.SettleOptions) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("service-test-secret-0123456789abcdef", time.Hour)
	recorder := &events.Recorder{}
	m := metrics.New()

	interceptors := connect.WithInterceptors(
		middleware.Metrics(m),
		middleware.RequireAuth(jwtManager, apiconnect.AuthServiceRegisterProcedure, apiconnect.AuthServiceLoginProcedure),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store, bcrypt.MinCost), store, jwtManager, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		NewGroupService(store, opts, m, logger), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(
		NewExpenseService(store, recorder, m, logger), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		url:      server.URL,
		store:    store,
		events:   recorder,
		metrics:  m,
		anon:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		anonExp:  apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		anonGrps: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
	}
}

func (e *testEnv) register(t *testing.T, email, name string) *session {
	t.Helper()
	resp, err := e.anon.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return e.sessionFor(resp.Msg.User, resp.Msg.Token)
}

func (e *testEnv) sessionFor(user *api.User, token string) *session {
	opt := connect.WithInterceptors(middleware.BearerToken(token))
	return &session{
		user:     user,
		token:    token,
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, e.url, opt),
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, e.url, opt),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, e.url, opt),
	}
}

// newGroup creates a group owned by admin and adds the other sessions as members.
func newGroup(t *testing.T, name string, admin *session, others ...*session) string {
	t.Helper()
	ctx := context.Background()
	resp, err := admin.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: name}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := resp.Msg.Group.Id
	for _, o := range others {
		_, err := admin.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupId: groupID, Email: o.user.Email}))
		if err != nil {
			t.Fatalf("AddMember(%s) failed: %v", o.user.Email, err)
		}
	}
	return groupID
}

func addExpense(t *testing.T, s *session, groupID, description, amount string, participants ...*session) *api.Expense {
	t.Helper()
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.user.Id
	}
	resp, err := s.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupId:        groupID,
		Description:    description,
		Amount:         amount,
		PayerId:        s.user.Id,
		ParticipantIds: ids,
	}))
	if err != nil {
		t.Fatalf("CreateExpense(%s) failed: %v", description, err)
	}
	return resp.Msg.Expense
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

// assertMetric checks the exposition served on /metrics for a sample line.
func assertMetric(t *testing.T, env *testEnv, sample string) {
	t.Helper()
	rec := httptest.NewRecorder()
	env.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), sample) {
		t.Errorf("metrics missing %q", sample)
	}
}
