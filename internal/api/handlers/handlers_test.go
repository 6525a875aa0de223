package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/authn"
	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/jobs/inmemory"
	"github.com/financepro/financepro/internal/notify"
	"github.com/financepro/financepro/internal/state"
	"github.com/financepro/financepro/internal/store"
)

// memStore is a minimal healthy RecordStore for handler tests.
type memStore struct {
	transactions []domain.Transaction
	categories   []domain.Category
	nextID       int
}

func (m *memStore) Configured() bool { return true }

func (m *memStore) ListTransactions(context.Context, string) []domain.Transaction {
	return append([]domain.Transaction{}, m.transactions...)
}

func (m *memStore) AddTransaction(_ context.Context, _ string, tx domain.Transaction) *domain.Transaction {
	m.nextID++
	tx.ID = fmt.Sprintf("tx-%d", m.nextID)
	m.transactions = append(m.transactions, tx)
	return &tx
}

func (m *memStore) UpdateTransaction(_ context.Context, _, id string, tx domain.Transaction) *domain.Transaction {
	tx.ID = id
	return &tx
}

func (m *memStore) DeleteTransaction(context.Context, string, string) bool { return true }

func (m *memStore) ListCategories(context.Context, string) []domain.Category {
	return append([]domain.Category{}, m.categories...)
}

func (m *memStore) AddCategory(_ context.Context, _, name string, typ domain.TransactionType) *domain.Category {
	m.nextID++
	cat := domain.Category{ID: fmt.Sprintf("cat-%d", m.nextID), Name: name, Type: typ}
	m.categories = append(m.categories, cat)
	return &cat
}

func (m *memStore) UpdateCategory(_ context.Context, _, id, name string, typ domain.TransactionType) *domain.Category {
	return &domain.Category{ID: id, Name: name, Type: typ}
}

func (m *memStore) DeleteCategory(context.Context, string, string) bool { return true }

func (m *memStore) CreateBackupSnapshot(context.Context, string, domain.BackupSnapshot) store.BackupResult {
	return store.BackupResult{Success: true}
}

// silentGateway is a no-op notification gateway.
type silentGateway struct{}

func (silentGateway) RequestPermission(context.Context) bool  { return false }
func (silentGateway) Send(context.Context, string, string)    {}
func (silentGateway) PermissionStatus() notify.Permission     { return notify.PermissionDenied }

func testController(t *testing.T) *state.Controller {
	t.Helper()
	c := state.NewController(&memStore{}, silentGateway{}, filepath.Join(t.TempDir(), "notified.json"), zerolog.Nop())
	c.StartSession(context.Background(), domain.User{ID: "u1", Name: "Ana", Role: domain.RoleAdvanced})
	t.Cleanup(c.EndSession)
	return c
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	user := &domain.User{ID: "u1", Name: "Ana", Role: domain.RoleAdvanced}
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestCreateTransactionValidation(t *testing.T) {
	h := NewTransactionsHandler(testController(t), zerolog.Nop())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"missing fields", `{"date":"2024-03-01"}`, http.StatusBadRequest},
		{"bad amount", `{"date":"2024-03-01","description":"x","amount":"abc","type":"EXPENSE"}`, http.StatusBadRequest},
		{"bad type", `{"date":"2024-03-01","description":"x","amount":"10","type":"OTHER"}`, http.StatusBadRequest},
		{"valid", `{"date":"2024-03-01","description":"Aluguel","amount":"150.50","type":"EXPENSE","category":"Aluguel","paymentMethod":"Boleto"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/transactions", tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListTransactionsAppliesFilter(t *testing.T) {
	c := testController(t)
	h := NewTransactionsHandler(c, zerolog.Nop())

	for _, body := range []string{
		`{"date":"2024-03-01","description":"Aluguel","amount":"150.50","type":"EXPENSE","category":"Aluguel"}`,
		`{"date":"2024-03-02","description":"Venda","amount":"500","type":"INCOME","category":"Vendas"}`,
	} {
		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/transactions", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed failed: %s", rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/transactions?type=INCOME", ""))

	var got []domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Description != "Venda" {
		t.Errorf("filtered list = %+v", got)
	}
}

func TestSignInRejectedPropagatesMessage(t *testing.T) {
	auth := &fakeAuth{signInErr: "Senha inválida."}
	h := NewAuthHandler(auth, testController(t), zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"a@b.com","password":"x"}`))
	h.SignIn(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Senha inválida.") {
		t.Errorf("error message not surfaced verbatim: %s", rec.Body.String())
	}
}

func TestSignInStartsSession(t *testing.T) {
	auth := &fakeAuth{
		session: &authn.Session{IDToken: "tok", User: domain.User{ID: "u2", Name: "Bia", Role: domain.RoleAdvanced}},
	}
	c := state.NewController(&memStore{}, silentGateway{}, filepath.Join(t.TempDir(), "n.json"), zerolog.Nop())
	t.Cleanup(c.EndSession)
	h := NewAuthHandler(auth, c, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"b@b.com","password":"ok"}`))
	h.SignIn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if user := c.User(); user == nil || user.ID != "u2" {
		t.Errorf("session not started: %+v", user)
	}
}

func TestReceiptUploadEnqueuesScan(t *testing.T) {
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(4, jobStore)
	t.Cleanup(func() { queue.Close() })

	storage := &fakeStorage{uri: "gs://bucket/receipts/u1/x.jpg"}
	h := NewReceiptsHandler(storage, queue, jobStore, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/receipts?filename=recibo.jpg", "fake-image-bytes")
	req.Header.Set("Content-Type", "image/jpeg")
	h.Upload(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["job_id"] == "" {
		t.Error("no job id returned")
	}
	if storage.uploads != 1 {
		t.Errorf("uploads = %d, want 1", storage.uploads)
	}

	job, err := jobStore.GetJob(context.Background(), resp["job_id"])
	if err != nil {
		t.Fatalf("job not stored: %v", err)
	}
	if job.GCSURI != storage.uri || job.UserID != "u1" {
		t.Errorf("job = %+v", job)
	}
}

func TestReceiptUploadRejectsEmptyBody(t *testing.T) {
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(4, jobStore)
	t.Cleanup(func() { queue.Close() })

	h := NewReceiptsHandler(&fakeStorage{}, queue, jobStore, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Upload(rec, authedRequest(http.MethodPost, "/api/receipts", ""))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReceiptUploadDisabledWithoutStorage(t *testing.T) {
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(4, jobStore)
	t.Cleanup(func() { queue.Close() })

	h := NewReceiptsHandler(nil, queue, jobStore, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/receipts", "fake-image-bytes")
	req.Header.Set("Content-Type", "image/jpeg")
	h.Upload(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503: %s", rec.Code, rec.Body.String())
	}
}

func TestCSVExportHeaders(t *testing.T) {
	c := testController(t)
	h := NewExportsHandler(c, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.CSV(rec, authedRequest(http.MethodGet, "/api/exports/csv", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date;Type;Category;Description;Amount;Method") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestInsightsEndpoint(t *testing.T) {
	c := testController(t)
	h := NewInsightsHandler(c, &fakeInsight{insights: "Suas despesas estão estáveis."}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Insights(rec, authedRequest(http.MethodGet, "/api/insights", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "estáveis") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestForecastUnavailable(t *testing.T) {
	c := testController(t)
	h := NewInsightsHandler(c, &fakeInsight{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Forecast(rec, authedRequest(http.MethodGet, "/api/forecast", ""))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// fakeAuth implements AuthService.
type fakeAuth struct {
	session   *authn.Session
	signInErr string
}

func (f *fakeAuth) SignIn(context.Context, string, string) (*authn.Session, string) {
	if f.signInErr != "" {
		return nil, f.signInErr
	}
	return f.session, ""
}

func (f *fakeAuth) SignUp(context.Context, string, string, string) string { return "" }
func (f *fakeAuth) SignOut(context.Context, *authn.Session)               {}
func (f *fakeAuth) ResetPassword(context.Context, string) string          { return "" }
func (f *fakeAuth) CurrentUser(context.Context, string) *domain.User      { return nil }

// fakeStorage implements attachments.Service.
type fakeStorage struct {
	uri     string
	uploads int
}

func (f *fakeStorage) Upload(context.Context, string, string, []byte) (string, error) {
	f.uploads++
	return f.uri, nil
}

func (f *fakeStorage) Fetch(context.Context, string) ([]byte, error) { return nil, nil }

// fakeInsight implements InsightService.
type fakeInsight struct {
	insights string
	forecast *domain.FinancialForecast
}

func (f *fakeInsight) Insights(context.Context, []domain.Transaction) string { return f.insights }
func (f *fakeInsight) Forecast(context.Context, []domain.Transaction) *domain.FinancialForecast {
	return f.forecast
}
