package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserID uint = 7

type mockTxnRepo struct {
	repository.TransactionRepository
	mockFindByID      func(ctx context.Context, userID uint, id string) (*models.Transaction, error)
	mockFindAllByUser func(ctx context.Context, userID uint) ([]models.Transaction, error)
	mockList          func(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Transaction, int64, error)
}

func (m *mockTxnRepo) FindByID(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
	return m.mockFindByID(ctx, userID, id)
}

func (m *mockTxnRepo) FindAllByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	if m.mockFindAllByUser == nil {
		return nil, nil
	}
	return m.mockFindAllByUser(ctx, userID)
}

func (m *mockTxnRepo) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Transaction, int64, error) {
	return m.mockList(ctx, userID, query)
}

type mockDraftRepo struct {
	repository.DraftRepository
	mockListByStatus func(ctx context.Context, userID uint, status string) ([]models.Draft, error)
}

func (m *mockDraftRepo) ListByStatus(ctx context.Context, userID uint, status string) ([]models.Draft, error) {
	return m.mockListByStatus(ctx, userID, status)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, nil)
	c.Set("userID", testUserID)
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "validation", err: fmt.Errorf("%w: amount must be positive", services.ErrValidation), wantStatus: http.StatusUnprocessableEntity, wantError: "validation failed: amount must be positive"},
		{name: "not found", err: services.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid state", err: services.ErrInvalidState, wantStatus: http.StatusConflict},
		{name: "duplicate", err: services.ErrDuplicate, wantStatus: http.StatusConflict},
		{name: "bad credentials", err: services.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "unauthorized", err: services.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "rate limited", err: services.ErrRateLimited, wantStatus: http.StatusTooManyRequests},
		{name: "unavailable", err: services.ErrUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("connection reset by peer"), wantStatus: http.StatusInternalServerError, wantError: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			want := tt.wantError
			if want == "" {
				want = tt.err.Error()
			}
			assert.Equal(t, want, decodeBody(t, w)["error"])
		})
	}
}

func TestListQuery(t *testing.T) {
	tests := []struct {
		target      string
		wantPage    int
		wantPerPage int
		wantDir     string
	}{
		{target: "/x", wantPage: 1, wantPerPage: 20, wantDir: "desc"},
		{target: "/x?page=3&per_page=50&sort_direction=asc", wantPage: 3, wantPerPage: 50, wantDir: "asc"},
		{target: "/x?page=-2&per_page=500", wantPage: 1, wantPerPage: 20, wantDir: "desc"},
		{target: "/x?page=abc&per_page=0", wantPage: 1, wantPerPage: 20, wantDir: "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, tt.target)
			q := listQuery(c)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantPerPage, q.PerPage)
			assert.Equal(t, tt.wantDir, q.SortDir)
		})
	}

	q := &repository.ListQuery{Page: 1, PerPage: 20}
	assert.Equal(t, int64(3), pagination(q, 41)["total_pages"])
	assert.Equal(t, int64(0), pagination(q, 0)["total_pages"])
}

func TestTransactionHandler_Show(t *testing.T) {
	due := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := []models.Transaction{
		{ID: "6f1c1d4e-58a4-4a55-9a4e-2f3a1d1d0b01", Type: ledger.TypeCreditReceivable, Amount: decimal.NewFromInt(100), Date: due.AddDate(0, -1, 0), DueDate: &due},
	}
	linked := rows[0].ID
	rows = append(rows, models.Transaction{
		ID: "6f1c1d4e-58a4-4a55-9a4e-2f3a1d1d0b02", Type: ledger.TypePaymentReceived, Account: ledger.AccountBank,
		Amount: decimal.NewFromInt(40), Date: due, LinkedTransactionID: &linked,
	})

	repo := &mockTxnRepo{
		mockFindAllByUser: func(ctx context.Context, userID uint) ([]models.Transaction, error) {
			return rows, nil
		},
		mockFindByID: func(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
			for i := range rows {
				if rows[i].ID == id && userID == testUserID {
					return &rows[i], nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	balances := services.NewBalanceService(repo, nil, nil)
	handler := NewTransactionHandler(services.NewTransactionService(repo, nil, balances))

	t.Run("derived debt fields", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/transactions/"+rows[0].ID)
		c.Params = gin.Params{{Key: "transaction_id", Value: rows[0].ID}}
		handler.Show(c)

		require.Equal(t, http.StatusOK, w.Code)
		txn := decodeBody(t, w)["transaction"].(map[string]interface{})
		assert.Equal(t, "60", txn["remaining_amount"])
		assert.Equal(t, string(ledger.StatusPartial), txn["status"])
	})

	t.Run("not a uuid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/transactions/42")
		c.Params = gin.Params{{Key: "transaction_id", Value: "42"}}
		handler.Show(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		id := "6f1c1d4e-58a4-4a55-9a4e-2f3a1d1d0bff"
		c, w := newTestContext(http.MethodGet, "/transactions/"+id)
		c.Params = gin.Params{{Key: "transaction_id", Value: id}}
		handler.Show(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransactionHandler_Index_Filters(t *testing.T) {
	var captured *repository.ListQuery
	repo := &mockTxnRepo{
		mockList: func(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Transaction, int64, error) {
			captured = query
			return []models.Transaction{}, 45, nil
		},
	}
	handler := NewTransactionHandler(services.NewTransactionService(repo, nil, services.NewBalanceService(repo, nil, nil)))

	c, w := newTestContext(http.MethodGet, "/transactions?type=expense&account=cash&debts=true&per_page=10&page=2")
	handler.Index(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "expense", captured.Filters["type"])
	assert.Equal(t, "cash", captured.Filters["account"])
	assert.Equal(t, "true", captured.Filters["debts"])
	assert.Equal(t, "", captured.Filters["category"])

	page := decodeBody(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), page["page"])
	assert.Equal(t, float64(5), page["total_pages"])
}

func TestBalanceHandler_Summary(t *testing.T) {
	repo := &mockTxnRepo{
		mockFindAllByUser: func(ctx context.Context, userID uint) ([]models.Transaction, error) {
			return []models.Transaction{
				{ID: "a", Type: ledger.TypeIncome, Account: ledger.AccountBank, Amount: decimal.RequireFromString("1500")},
				{ID: "b", Type: ledger.TypeExpense, Account: ledger.AccountCash, Amount: decimal.RequireFromString("20.50")},
				{ID: "c", Type: ledger.TypeCreditPayable, Amount: decimal.RequireFromString("300")},
			}, nil
		},
	}
	handler := NewBalanceHandler(services.NewBalanceService(repo, nil, nil))

	c, w := newTestContext(http.MethodGet, "/balances")
	handler.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	balances := decodeBody(t, w)["balances"].(map[string]interface{})
	assert.Equal(t, "1500", balances["bank"])
	assert.Equal(t, "-20.5", balances["cash"])
	assert.Equal(t, "300", balances["loan"])
	assert.Equal(t, "1179.5", balances["net_worth"])
	assert.Equal(t, float64(1), balances["open_payables"])
}

func TestBalanceHandler_Debts_RejectsBadFilters(t *testing.T) {
	handler := NewBalanceHandler(services.NewBalanceService(&mockTxnRepo{}, nil, nil))

	for _, target := range []string{"/debts?direction=sideways", "/debts?status=maybe"} {
		c, w := newTestContext(http.MethodGet, target)
		handler.Debts(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestDraftHandler_Index_DefaultStatus(t *testing.T) {
	mockRepo := &mockDraftRepo{}
	handler := NewDraftHandler(services.NewDraftService(mockRepo, nil, nil, nil))

	capturedStatus := "unset"
	mockRepo.mockListByStatus = func(ctx context.Context, userID uint, status string) ([]models.Draft, error) {
		capturedStatus = status
		return []models.Draft{}, nil
	}

	// No status provided -> pending
	c, w := newTestContext(http.MethodGet, "/drafts")
	handler.Index(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DraftStatusPending, capturedStatus)

	// "all" -> no filter
	c, _ = newTestContext(http.MethodGet, "/drafts?status=all")
	handler.Index(c)
	assert.Equal(t, "", capturedStatus)

	c, _ = newTestContext(http.MethodGet, "/drafts?status=confirmed")
	handler.Index(c)
	assert.Equal(t, models.DraftStatusConfirmed, capturedStatus)

	// Unknown status never reaches the repository
	capturedStatus = "unset"
	c, w = newTestContext(http.MethodGet, "/drafts?status=archived")
	handler.Index(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unset", capturedStatus)
}
