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

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// When start_date and end_date are omitted, the calendar window for the
// period containing today is used.
type CreateBudgetRequest struct {
	Name       string              `json:"name" binding:"required,max=100"`
	Amount     int64               `json:"amount" binding:"required,gt=0"`
	Period     models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	StartDate  *string             `json:"start_date"`
	EndDate    *string             `json:"end_date"`
	CategoryID *string             `json:"category_id" binding:"omitempty,uuid"`
	WalletID   *string             `json:"wallet_id" binding:"omitempty,uuid"`
	AutoRenew  bool                `json:"auto_renew"`
	RenewDay   *int                `json:"renew_day" binding:"omitempty,min=1,max=31"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// Omitted fields are left unchanged. CategoryID, WalletID, and RenewDay are
// kept raw so an explicit null can clear the scope while an absent key leaves
// it alone. Period and the date window are fixed at creation.
type UpdateBudgetRequest struct {
	Name       *string         `json:"name" binding:"omitempty,max=100"`
	Amount     *int64          `json:"amount" binding:"omitempty,gt=0"`
	CategoryID json.RawMessage `json:"category_id"`
	WalletID   json.RawMessage `json:"wallet_id"`
	AutoRenew  *bool           `json:"auto_renew"`
	RenewDay   json.RawMessage `json:"renew_day"`
}

// CreateBudget handles the creation of a new budget
// @Summary     Create a budget
// @Description Create a new budget in the active organization, optionally scoped to a category and/or wallet
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var startDate, endDate time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		endDate = parsed
	}

	period := req.Period
	if period == "" {
		period = models.BudgetPeriodMonthly
	}

	budget, err := h.budgetService.CreateBudget(actx, services.CreateBudgetFields{
		Name:       req.Name,
		Amount:     req.Amount,
		Period:     period,
		StartDate:  startDate,
		EndDate:    endDate,
		CategoryID: req.CategoryID,
		WalletID:   req.WalletID,
		AutoRenew:  req.AutoRenew,
		RenewDay:   req.RenewDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": budget.Name, "amount": budget.Amount, "period": string(budget.Period)})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets
// @Summary     List budgets
// @Description Get a paginated list of the active organization's budgets with derived spend-to-date
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.BudgetWithSpent] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
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

	result, err := h.budgetService.GetBudgets(actx, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetByID handles fetching a single budget
// @Summary     Get budget by ID
// @Description Get a specific budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(actx, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating a budget
// @Summary     Update budget
// @Description Update a budget's name, amount, scope, or renewal settings. Period and date window cannot be changed.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.BudgetUpdateFields{
		Name:      req.Name,
		Amount:    req.Amount,
		AutoRenew: req.AutoRenew,
	}
	if len(req.CategoryID) > 0 {
		var categoryID *string
		if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id"))
			return
		}
		fields.CategoryID = &categoryID
	}
	if len(req.WalletID) > 0 {
		var walletID *string
		if err := json.Unmarshal(req.WalletID, &walletID); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid wallet_id"))
			return
		}
		fields.WalletID = &walletID
	}
	if len(req.RenewDay) > 0 {
		var renewDay *int
		if err := json.Unmarshal(req.RenewDay, &renewDay); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid renew_day"))
			return
		}
		if renewDay != nil && (*renewDay < 1 || *renewDay > 31) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "renew_day must be between 1 and 31"))
			return
		}
		fields.RenewDay = &renewDay
	}

	budget, err := h.budgetService.UpdateBudget(actx, c.Param("id"), fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget
// @Summary     Delete budget
// @Description Delete a budget. Transactions are unaffected.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(actx, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}
