package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	WalletID          string                    `json:"wallet_id" binding:"required,uuid"`
	CategoryID        *string                   `json:"category_id" binding:"omitempty,uuid"`
	Type              models.TransactionType    `json:"type" binding:"required,transaction_type"`
	Amount            int64                     `json:"amount" binding:"required,gt=0"`
	Description       string                    `json:"description" binding:"max=500"`
	Notes             string                    `json:"notes" binding:"max=2000"`
	Tags              string                    `json:"tags" binding:"max=500"`
	Date              *string                   `json:"date"`
	IsRecurring       bool                      `json:"is_recurring"`
	RecurringInterval *models.RecurringInterval `json:"recurring_interval" binding:"omitempty,recurring_interval"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields are left unchanged. CategoryID is kept raw because an absent
// key and an explicit null mean different things: absent leaves the category
// alone, null clears it.
type UpdateTransactionRequest struct {
	WalletID          *string                   `json:"wallet_id" binding:"omitempty,uuid"`
	CategoryID        json.RawMessage           `json:"category_id"`
	Type              *models.TransactionType   `json:"type" binding:"omitempty,transaction_type"`
	Amount            *int64                    `json:"amount" binding:"omitempty,gt=0"`
	Description       *string                   `json:"description" binding:"omitempty,max=500"`
	Notes             *string                   `json:"notes" binding:"omitempty,max=2000"`
	Tags              *string                   `json:"tags" binding:"omitempty,max=500"`
	Date              *string                   `json:"date"`
	IsRecurring       *bool                     `json:"is_recurring"`
	RecurringInterval *models.RecurringInterval `json:"recurring_interval" binding:"omitempty,recurring_interval"`
}

// TransferRequest represents the request payload for a wallet-to-wallet transfer.
type TransferRequest struct {
	FromWalletID string `json:"from_wallet_id" binding:"required,uuid"`
	ToWalletID   string `json:"to_wallet_id" binding:"required,uuid"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Description  string `json:"description" binding:"max=500"`
}

// TransactionResponse represents a transaction with any budget alerts it triggered.
type TransactionResponse struct {
	Transaction  *models.Transaction    `json:"transaction"`
	BudgetAlerts []services.BudgetAlert `json:"budget_alerts,omitempty"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a new income or expense transaction. Expense transactions return budget alerts for any budget whose threshold the spend crossed.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionDate := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		transactionDate = parsed
	}

	transaction, alerts, err := h.transactionService.CreateTransaction(actx, services.CreateTransactionFields{
		WalletID:          req.WalletID,
		CategoryID:        req.CategoryID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		Notes:             req.Notes,
		Tags:              req.Tags,
		Date:              transactionDate,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: req.RecurringInterval,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"wallet_id": transaction.WalletID,
			"type":      string(transaction.Type),
			"amount":    transaction.Amount,
		})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction, "budget_alerts": alerts})
}

// GetTransactions handles listing transactions
// @Summary     List transactions
// @Description Get a paginated list of the active organization's transactions with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       search      query string false "Search in description, notes, and tags"
// @Param       type        query string false "Filter by transaction type (INCOME, EXPENSE)"
// @Param       category_id query string false "Filter by category ID"
// @Param       wallet_id   query string false "Filter by wallet ID"
// @Param       from_date   query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(actx, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{Search: c.Query("search")}

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be INCOME or EXPENSE")
		}
	}

	if v := c.Query("category_id"); v != "" {
		id := v
		filter.CategoryID = &id
	}

	if v := c.Query("wallet_id"); v != "" {
		id := v
		filter.WalletID = &id
	}

	return filter, nil
}

// GetTransactionByID handles fetching a single transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(actx, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update an existing transaction. Wallet balances are adjusted for any amount, type, or wallet change. Expense updates return budget alerts.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.TransactionUpdateFields{
		WalletID:          req.WalletID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		Notes:             req.Notes,
		Tags:              req.Tags,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: req.RecurringInterval,
	}
	if len(req.CategoryID) > 0 {
		var categoryID *string
		if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id"))
			return
		}
		fields.CategoryID = &categoryID
	}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		fields.Date = &parsed
	}

	transaction, alerts, err := h.transactionService.UpdateTransaction(actx, c.Param("id"), fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction, "budget_alerts": alerts})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and reverse its effect on the wallet balance
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(actx, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// Transfer handles moving money between two wallets
// @Summary     Transfer between wallets
// @Description Atomically move money between two wallets in the active organization. Produces a paired expense and income transaction.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       request body TransferRequest true "Transfer details"
// @Success     201 {object} services.TransferResult "Transfer completed"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/transfer [post]
func (h *TransactionHandler) Transfer(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.Transfer(actx, req.FromWalletID, req.ToWalletID, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "CREATE_TRANSFER", "transaction", result.Expense.ID, c.ClientIP(),
		map[string]interface{}{
			"from_wallet_id": req.FromWalletID,
			"to_wallet_id":   req.ToWalletID,
			"amount":         req.Amount,
		})

	c.JSON(http.StatusCreated, gin.H{"transfer": result})
}
