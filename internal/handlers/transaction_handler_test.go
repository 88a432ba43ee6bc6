package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(actx services.AuthContext, fields services.CreateTransactionFields) (*models.Transaction, []services.BudgetAlert, error)
	getTransactionsFn    func(actx services.AuthContext, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(actx services.AuthContext, transactionID string) (*models.Transaction, error)
	updateTransactionFn  func(actx services.AuthContext, transactionID string, fields services.TransactionUpdateFields) (*models.Transaction, []services.BudgetAlert, error)
	deleteTransactionFn  func(actx services.AuthContext, transactionID string) error
	transferFn           func(actx services.AuthContext, fromWalletID, toWalletID string, amount int64, description string) (*services.TransferResult, error)
}

func (m *mockTransactionService) CreateTransaction(actx services.AuthContext, fields services.CreateTransactionFields) (*models.Transaction, []services.BudgetAlert, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(actx, fields)
	}
	return &models.Transaction{}, nil, nil
}

func (m *mockTransactionService) GetTransactions(actx services.AuthContext, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(actx, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(actx services.AuthContext, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(actx, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(actx services.AuthContext, transactionID string, fields services.TransactionUpdateFields) (*models.Transaction, []services.BudgetAlert, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(actx, transactionID, fields)
	}
	return &models.Transaction{}, nil, nil
}

func (m *mockTransactionService) DeleteTransaction(actx services.AuthContext, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(actx, transactionID)
	}
	return nil
}

func (m *mockTransactionService) Transfer(actx services.AuthContext, fromWalletID, toWalletID string, amount int64, description string) (*services.TransferResult, error) {
	if m.transferFn != nil {
		return m.transferFn(actx, fromWalletID, toWalletID, amount, description)
	}
	return &services.TransferResult{Expense: &models.Transaction{}, Income: &models.Transaction{}}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

const (
	testWalletID   = "0aaaaaaa-aaaa-7aaa-aaaa-aaaaaaaaaaaa"
	testCategoryID = "0bbbbbbb-bbbb-7bbb-bbbb-bbbbbbbbbbbb"
	testWalletID2  = "0ccccccc-cccc-7ccc-cccc-cccccccccccc"
)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectAuth("user-1", "org-1"))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	auth.POST("/transactions/transfer", handler.Transfer)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 with budget alerts", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(actx services.AuthContext, fields services.CreateTransactionFields) (*models.Transaction, []services.BudgetAlert, error) {
				tx := &models.Transaction{
					Base:           models.Base{ID: "tx-1"},
					OrganizationID: actx.OrganizationID,
					UserID:         actx.UserID,
					WalletID:       fields.WalletID,
					Type:           fields.Type,
					Amount:         fields.Amount,
				}
				alerts := []services.BudgetAlert{{
					BudgetID:   "budget-1",
					BudgetName: "Groceries",
					Level:      "warning",
					Spent:      8500,
					Amount:     10000,
					Percentage: 85,
				}}
				return tx, alerts, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"wallet_id":"`+testWalletID+`","type":"EXPENSE","amount":5000,"description":"Groceries"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 5000 {
			t.Errorf("expected amount 5000, got %v", tx["amount"])
		}
		alerts := result["budget_alerts"].([]interface{})
		if len(alerts) != 1 {
			t.Fatalf("expected 1 budget alert, got %d", len(alerts))
		}
		alert := alerts[0].(map[string]interface{})
		if alert["level"] != "warning" {
			t.Errorf("expected warning level, got %v", alert["level"])
		}
	})

	t.Run("returns 400 on missing wallet_id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"INCOME","amount":5000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"wallet_id":"`+testWalletID+`","type":"TRANSFER","amount":5000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"wallet_id":"`+testWalletID+`","type":"EXPENSE","amount":5000,"date":"yesterday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("accepts bare YYYY-MM-DD date", func(t *testing.T) {
		var gotDate string
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ services.AuthContext, fields services.CreateTransactionFields) (*models.Transaction, []services.BudgetAlert, error) {
				gotDate = fields.Date.Format("2006-01-02")
				return &models.Transaction{}, nil, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"wallet_id":"`+testWalletID+`","type":"EXPENSE","amount":5000,"date":"2024-03-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDate != "2024-03-15" {
			t.Errorf("expected date 2024-03-15, got %s", gotDate)
		}
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getTransactionsFn: func(_ services.AuthContext, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?search=coffee&type=EXPENSE&wallet_id="+testWalletID+"&from_date=2024-01-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Search != "coffee" {
			t.Errorf("expected search coffee, got %q", gotFilter.Search)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Errorf("expected EXPENSE type filter, got %v", gotFilter.Type)
		}
		if gotFilter.WalletID == nil || *gotFilter.WalletID != testWalletID {
			t.Errorf("expected wallet filter, got %v", gotFilter.WalletID)
		}
		if gotFilter.FromDate == nil || gotFilter.FromDate.Format("2006-01-02") != "2024-01-01" {
			t.Errorf("expected from_date 2024-01-01, got %v", gotFilter.FromDate)
		}
	})

	t.Run("returns 400 on bad type filter", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?type=bogus", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("explicit null clears the category", func(t *testing.T) {
		var gotFields services.TransactionUpdateFields
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ services.AuthContext, _ string, fields services.TransactionUpdateFields) (*models.Transaction, []services.BudgetAlert, error) {
				gotFields = fields
				return &models.Transaction{}, nil, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/tx-1", `{"category_id":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFields.CategoryID == nil {
			t.Fatal("expected category_id to be present")
		}
		if *gotFields.CategoryID != nil {
			t.Errorf("expected cleared category, got %v", **gotFields.CategoryID)
		}
	})

	t.Run("absent category leaves it untouched", func(t *testing.T) {
		var gotFields services.TransactionUpdateFields
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ services.AuthContext, _ string, fields services.TransactionUpdateFields) (*models.Transaction, []services.BudgetAlert, error) {
				gotFields = fields
				return &models.Transaction{}, nil, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/tx-1", `{"amount":7500}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFields.CategoryID != nil {
			t.Error("expected category_id to be untouched")
		}
		if gotFields.Amount == nil || *gotFields.Amount != 7500 {
			t.Errorf("expected amount 7500, got %v", gotFields.Amount)
		}
	})

	t.Run("returns 404 when transaction not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_ services.AuthContext, _ string, _ services.TransactionUpdateFields) (*models.Transaction, []services.BudgetAlert, error) {
				return nil, nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/missing", `{"amount":100}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Transfer(t *testing.T) {
	t.Run("returns 201 with both wallets and legs", func(t *testing.T) {
		txSvc := &mockTransactionService{
			transferFn: func(_ services.AuthContext, fromWalletID, toWalletID string, amount int64, _ string) (*services.TransferResult, error) {
				return &services.TransferResult{
					FromWallet: &models.Wallet{Base: models.Base{ID: fromWalletID}, Balance: 5000},
					ToWallet:   &models.Wallet{Base: models.Base{ID: toWalletID}, Balance: 15000},
					Expense:    &models.Transaction{Base: models.Base{ID: "tx-out"}, Amount: amount},
					Income:     &models.Transaction{Base: models.Base{ID: "tx-in"}, Amount: amount},
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/transfer",
			`{"from_wallet_id":"`+testWalletID+`","to_wallet_id":"`+testWalletID2+`","amount":5000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		transfer := result["transfer"].(map[string]interface{})
		if transfer["from_wallet"] == nil || transfer["to_wallet"] == nil {
			t.Error("expected both wallets in response")
		}
	})

	t.Run("returns 400 on insufficient balance", func(t *testing.T) {
		txSvc := &mockTransactionService{
			transferFn: func(_ services.AuthContext, _, _ string, _ int64, _ string) (*services.TransferResult, error) {
				return nil, apperrors.ErrInsufficientBalance
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/transfer",
			`{"from_wallet_id":"`+testWalletID+`","to_wallet_id":"`+testWalletID2+`","amount":999999}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		errObj := result["error"].(map[string]interface{})
		if errObj["code"] != "INSUFFICIENT_BALANCE" {
			t.Errorf("expected code INSUFFICIENT_BALANCE, got %v", errObj["code"])
		}
	})

	t.Run("returns 400 when same wallet on both sides", func(t *testing.T) {
		txSvc := &mockTransactionService{
			transferFn: func(_ services.AuthContext, _, _ string, _ int64, _ string) (*services.TransferResult, error) {
				return nil, apperrors.ErrSameWalletTransfer
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions/transfer",
			`{"from_wallet_id":"`+testWalletID+`","to_wallet_id":"`+testWalletID+`","amount":5000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_RequiresOrganization(t *testing.T) {
	handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
	r := gin.New()
	r.GET("/transactions", injectAuth("user-1", ""), handler.GetTransactions)

	rec := doRequest(r, "GET", "/transactions", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "NO_ORGANIZATION" {
		t.Errorf("expected code NO_ORGANIZATION, got %v", errObj["code"])
	}
}
