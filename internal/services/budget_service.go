package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/recurrence"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new budget service instance.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget. When no window is supplied, the calendar
// window of the budget's period containing the current time is used.
func (s *budgetService) CreateBudget(actx AuthContext, fields CreateBudgetFields) (*models.Budget, error) {
	if fields.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if fields.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if fields.RenewDay != nil && (*fields.RenewDay < 1 || *fields.RenewDay > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renew day must be between 1 and 31")
	}

	startDate, endDate := fields.StartDate, fields.EndDate
	if startDate.IsZero() || endDate.IsZero() {
		startDate, endDate = recurrence.DefaultWindow(time.Now(), fields.Period)
	}
	if !endDate.After(startDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must be after start date")
	}

	if fields.CategoryID != nil {
		if err := s.checkCategory(actx, *fields.CategoryID); err != nil {
			return nil, err
		}
	}
	if fields.WalletID != nil {
		if err := s.checkWallet(actx, *fields.WalletID); err != nil {
			return nil, err
		}
	}

	budget := &models.Budget{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		Name:           fields.Name,
		Amount:         fields.Amount,
		Period:         fields.Period,
		StartDate:      startDate,
		EndDate:        endDate,
		CategoryID:     fields.CategoryID,
		WalletID:       fields.WalletID,
		AutoRenew:      fields.AutoRenew,
		RenewDay:       fields.RenewDay,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetBudgets returns the organization's budgets with their spend-to-date.
func (s *budgetService) GetBudgets(actx AuthContext, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithSpent], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.Budget{}).
		Where("organization_id = ?", actx.OrganizationID).
		Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := s.db.Preload("Category").Preload("Wallet").
		Where("organization_id = ?", actx.OrganizationID).
		Order("end_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	items := make([]BudgetWithSpent, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.spentFor(actx, &b)
		if err != nil {
			return nil, err
		}
		items = append(items, BudgetWithSpent{Budget: b, Spent: spent})
	}

	resp := pagination.NewPageResponse(items, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetBudgetByID retrieves a budget scoped to the caller's organization.
func (s *budgetService) GetBudgetByID(actx AuthContext, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Preload("Category").Preload("Wallet").
		Where("id = ? AND organization_id = ?", budgetID, actx.OrganizationID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies a partial update. Period and window are immutable once
// created; auto-renewal is how a budget moves to a new window.
func (s *budgetService) UpdateBudget(actx AuthContext, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(actx, budgetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.Name != nil {
		if *fields.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
		}
		updates["name"] = *fields.Name
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.CategoryID != nil {
		if *fields.CategoryID != nil {
			if err := s.checkCategory(actx, **fields.CategoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.WalletID != nil {
		if *fields.WalletID != nil {
			if err := s.checkWallet(actx, **fields.WalletID); err != nil {
				return nil, err
			}
		}
		updates["wallet_id"] = *fields.WalletID
	}
	if fields.AutoRenew != nil {
		updates["auto_renew"] = *fields.AutoRenew
	}
	if fields.RenewDay != nil {
		if *fields.RenewDay != nil && (**fields.RenewDay < 1 || **fields.RenewDay > 31) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renew day must be between 1 and 31")
		}
		updates["renew_day"] = *fields.RenewDay
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// DeleteBudget removes a budget. Transactions are untouched; budgets only
// ever observe them.
func (s *budgetService) DeleteBudget(actx AuthContext, budgetID string) error {
	budget, err := s.GetBudgetByID(actx, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// EvaluateAlerts returns threshold alerts for every budget whose window and
// scope match the given expense. A budget with a nil category or wallet scope
// matches any category or wallet. Spent at or above 80% of the amount raises
// a warning; spent above the amount raises an exceeded alert.
func (s *budgetService) EvaluateAlerts(actx AuthContext, txDate time.Time, categoryID *string, walletID string) ([]BudgetAlert, error) {
	query := s.db.Where("organization_id = ?", actx.OrganizationID).
		Where("start_date <= ? AND end_date >= ?", txDate, txDate).
		Where("(wallet_id IS NULL OR wallet_id = ?)", walletID)
	if categoryID != nil {
		query = query.Where("(category_id IS NULL OR category_id = ?)", *categoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}

	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var alerts []BudgetAlert
	for _, b := range budgets {
		spent, err := s.spentFor(actx, &b)
		if err != nil {
			return nil, err
		}

		level := ""
		switch {
		case spent > b.Amount:
			level = "exceeded"
		case spent*100 >= b.Amount*80:
			level = "warning"
		default:
			continue
		}

		alerts = append(alerts, BudgetAlert{
			BudgetID:   b.ID,
			BudgetName: b.Name,
			Level:      level,
			Spent:      spent,
			Amount:     b.Amount,
			Percentage: int(math.Round(float64(spent) / float64(b.Amount) * 100)),
		})
	}

	return alerts, nil
}

// spentFor sums the expenses that fall inside the budget's window and scope.
func (s *budgetService) spentFor(actx AuthContext, budget *models.Budget) (int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("organization_id = ?", actx.OrganizationID).
		Where("type = ?", models.TransactionTypeExpense).
		Where("date >= ? AND date <= ?", budget.StartDate, budget.EndDate)
	if budget.CategoryID != nil {
		query = query.Where("category_id = ?", *budget.CategoryID)
	}
	if budget.WalletID != nil {
		query = query.Where("wallet_id = ?", *budget.WalletID)
	}

	var spent int64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&spent).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

func (s *budgetService) checkCategory(actx AuthContext, categoryID string) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND organization_id = ?", categoryID, actx.OrganizationID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (s *budgetService) checkWallet(actx AuthContext, walletID string) error {
	var count int64
	if err := s.db.Model(&models.Wallet{}).
		Where("id = ? AND organization_id = ?", walletID, actx.OrganizationID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}
