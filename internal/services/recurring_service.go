package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
	"centavo/internal/recurrence"
)

// maxOccurrencesPerRun caps how many occurrences a single template can
// materialize in one pass, so a template whose cursor is years behind cannot
// stall the whole run. The remainder is picked up by the next pass.
const maxOccurrencesPerRun = 366

// recurringService materializes overdue recurring transactions and renews
// expired auto-renew budgets.
type recurringService struct {
	db        *gorm.DB
	walletSvc WalletServicer
}

// NewRecurringService creates a new recurring processor instance.
func NewRecurringService(db *gorm.DB, walletSvc WalletServicer) RecurringServicer {
	return &recurringService{db: db, walletSvc: walletSvc}
}

// ProcessRecurring runs one catch-up pass for the caller's organization: every
// recurrence template whose cursor has fallen strictly before now gets one
// materialized transaction per missed occurrence, and every expired auto-renew
// budget gets a successor window. A failure on one template or budget is
// logged and skipped; the rest of the pass continues.
func (s *recurringService) ProcessRecurring(actx AuthContext, now time.Time) (*RecurringResult, error) {
	log := logger.Get()
	result := &RecurringResult{}

	var templates []models.Transaction
	err := s.db.Where("organization_id = ? AND is_recurring = ? AND next_recurrence_date < ?",
		actx.OrganizationID, true, now).
		Find(&templates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range templates {
		processed, err := s.processTemplate(actx, &templates[i], now)
		if err != nil {
			log.Warnw("skipping recurring template",
				"transaction_id", templates[i].ID,
				"organization_id", actx.OrganizationID,
				"error", err)
			continue
		}
		result.ProcessedTransactions += processed
	}

	var budgets []models.Budget
	err = s.db.Where("organization_id = ? AND auto_renew = ? AND end_date < ?",
		actx.OrganizationID, true, now).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range budgets {
		renewed, err := s.renewBudget(actx, &budgets[i], now)
		if err != nil {
			log.Warnw("skipping budget renewal",
				"budget_id", budgets[i].ID,
				"organization_id", actx.OrganizationID,
				"error", err)
			continue
		}
		if renewed {
			result.RenewedBudgets++
		}
	}

	return result, nil
}

// ProcessAllOrganizations runs a catch-up pass over every organization. Used
// by the background runner; API calls go through ProcessRecurring instead.
func (s *recurringService) ProcessAllOrganizations(now time.Time) (*RecurringResult, error) {
	log := logger.Get()
	total := &RecurringResult{}

	var orgs []models.Organization
	if err := s.db.Find(&orgs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, org := range orgs {
		var owner models.Member
		err := s.db.Where("organization_id = ? AND role = ?", org.ID, models.MemberRoleOwner).
			First(&owner).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnw("skipping organization in recurring pass", "organization_id", org.ID, "error", err)
			}
			continue
		}

		actx := AuthContext{UserID: owner.UserID, OrganizationID: org.ID}
		result, err := s.ProcessRecurring(actx, now)
		if err != nil {
			log.Warnw("recurring pass failed for organization", "organization_id", org.ID, "error", err)
			continue
		}
		total.ProcessedTransactions += result.ProcessedTransactions
		total.RenewedBudgets += result.RenewedBudgets
	}

	return total, nil
}

// processTemplate materializes every occurrence of one template strictly
// before now, applying each amount to the wallet, then advances the cursor.
// The cursor advance is conditional on the cursor still holding the value this
// pass read; if another pass got there first the whole batch rolls back, so
// concurrent runs cannot double-materialize.
func (s *recurringService) processTemplate(actx AuthContext, template *models.Transaction, now time.Time) (int, error) {
	if template.RecurringInterval == nil || template.NextRecurrenceDate == nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "template has no interval or cursor")
	}

	interval := *template.RecurringInterval
	originalCursor := *template.NextRecurrenceDate

	var occurrences []time.Time
	cursor := originalCursor
	for cursor.Before(now) && len(occurrences) < maxOccurrencesPerRun {
		occurrences = append(occurrences, cursor)
		cursor = recurrence.NextDate(cursor, interval)
	}
	if len(occurrences) == 0 {
		return 0, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, date := range occurrences {
			materialized := models.Transaction{
				OrganizationID: template.OrganizationID,
				UserID:         template.UserID,
				WalletID:       template.WalletID,
				CategoryID:     template.CategoryID,
				Type:           template.Type,
				Amount:         template.Amount,
				Description:    template.Description,
				Notes:          template.Notes,
				Tags:           template.Tags,
				Date:           date,
				IsRecurring:    false,
			}
			if err := tx.Create(&materialized).Error; err != nil {
				return err
			}
			if err := s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, template.WalletID,
				template.Type.SignedAmount(template.Amount)); err != nil {
				return err
			}
		}

		result := tx.Model(&models.Transaction{}).
			Where("id = ? AND next_recurrence_date = ?", template.ID, originalCursor).
			Update("next_recurrence_date", cursor)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Another pass already advanced this template.
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "template cursor moved concurrently")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(occurrences), nil
}

// renewBudget advances an expired budget's window past now and inserts the
// successor. The expired row keeps its dates but loses its auto-renew flag;
// the flip is conditional so two concurrent passes cannot create two
// successors.
func (s *recurringService) renewBudget(actx AuthContext, budget *models.Budget, now time.Time) (bool, error) {
	startDate, endDate := budget.StartDate, budget.EndDate
	for endDate.Before(now) {
		startDate, endDate = recurrence.AdvanceBudgetWindow(startDate, endDate, budget.Period, budget.RenewDay)
	}

	renewed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Budget{}).
			Where("id = ? AND auto_renew = ?", budget.ID, true).
			Update("auto_renew", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Another pass already renewed this budget.
			return nil
		}

		successor := models.Budget{
			OrganizationID: budget.OrganizationID,
			UserID:         budget.UserID,
			Name:           budget.Name,
			Amount:         budget.Amount,
			Period:         budget.Period,
			StartDate:      startDate,
			EndDate:        endDate,
			CategoryID:     budget.CategoryID,
			WalletID:       budget.WalletID,
			AutoRenew:      true,
			RenewDay:       budget.RenewDay,
		}
		if err := tx.Create(&successor).Error; err != nil {
			return err
		}
		renewed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return renewed, nil
}
