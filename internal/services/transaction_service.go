package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/recurrence"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db        *gorm.DB
	walletSvc WalletServicer
	budgetSvc BudgetServicer
}

// NewTransactionService creates a new transaction service instance.
func NewTransactionService(db *gorm.DB, walletSvc WalletServicer, budgetSvc BudgetServicer) TransactionServicer {
	return &transactionService{db: db, walletSvc: walletSvc, budgetSvc: budgetSvc}
}

// CreateTransaction records a transaction and moves the wallet balance in one
// database transaction. When the new row is a recurrence template,
// NextRecurrenceDate is set one interval after the transaction date.
// For expenses, any budget threshold alerts triggered by the new spend are
// returned alongside the transaction.
func (s *transactionService) CreateTransaction(actx AuthContext, fields CreateTransactionFields) (*models.Transaction, []BudgetAlert, error) {
	if fields.Amount <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if fields.IsRecurring && fields.RecurringInterval == nil {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring transactions require an interval")
	}

	if _, err := s.walletSvc.GetWalletByID(actx, fields.WalletID); err != nil {
		return nil, nil, err
	}
	if err := s.validateCategory(actx, fields.CategoryID, fields.Type); err != nil {
		return nil, nil, err
	}

	transaction := &models.Transaction{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		WalletID:       fields.WalletID,
		CategoryID:     fields.CategoryID,
		Type:           fields.Type,
		Amount:         fields.Amount,
		Description:    fields.Description,
		Notes:          fields.Notes,
		Tags:           fields.Tags,
		Date:           fields.Date,
		IsRecurring:    fields.IsRecurring,
	}
	if fields.IsRecurring {
		transaction.RecurringInterval = fields.RecurringInterval
		next := recurrence.NextDate(fields.Date, *fields.RecurringInterval)
		transaction.NextRecurrenceDate = &next
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		return s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, fields.WalletID, fields.Type.SignedAmount(fields.Amount))
	})
	if err != nil {
		return nil, nil, s.asAppError(err)
	}

	alerts := s.alertsFor(actx, transaction)
	return transaction, alerts, nil
}

// GetTransactions returns the organization's transactions, newest first,
// narrowed by the given filter.
func (s *transactionService) GetTransactions(actx AuthContext, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query := s.db.Model(&models.Transaction{}).Where("organization_id = ?", actx.OrganizationID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description LIKE ? OR notes LIKE ? OR tags LIKE ?", pattern, pattern, pattern)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.WalletID != nil {
		query = query.Where("wallet_id = ?", *filter.WalletID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query.Preload("Wallet").Preload("Category").
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetTransactionByID retrieves a transaction scoped to the caller's organization.
func (s *transactionService) GetTransactionByID(actx AuthContext, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Wallet").Preload("Category").
		Where("id = ? AND organization_id = ?", transactionID, actx.OrganizationID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction edits a transaction, keeping wallet balances consistent:
// the old row's balance effect is reversed on its wallet, then the new values
// are applied to the (possibly different) target wallet, all atomically.
func (s *transactionService) UpdateTransaction(actx AuthContext, transactionID string, fields TransactionUpdateFields) (*models.Transaction, []BudgetAlert, error) {
	transaction, err := s.GetTransactionByID(actx, transactionID)
	if err != nil {
		return nil, nil, err
	}

	oldWalletID := transaction.WalletID
	oldDelta := transaction.Type.SignedAmount(transaction.Amount)
	oldDate := transaction.Date
	oldInterval := transaction.RecurringInterval
	wasRecurring := transaction.IsRecurring

	if fields.WalletID != nil {
		if _, err := s.walletSvc.GetWalletByID(actx, *fields.WalletID); err != nil {
			return nil, nil, err
		}
		transaction.WalletID = *fields.WalletID
	}
	if fields.Type != nil {
		transaction.Type = *fields.Type
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		transaction.Amount = *fields.Amount
	}
	if fields.CategoryID != nil {
		transaction.CategoryID = *fields.CategoryID
	}
	if err := s.validateCategory(actx, transaction.CategoryID, transaction.Type); err != nil {
		return nil, nil, err
	}
	if fields.Description != nil {
		transaction.Description = *fields.Description
	}
	if fields.Notes != nil {
		transaction.Notes = *fields.Notes
	}
	if fields.Tags != nil {
		transaction.Tags = *fields.Tags
	}
	if fields.Date != nil {
		transaction.Date = *fields.Date
	}
	if fields.IsRecurring != nil {
		transaction.IsRecurring = *fields.IsRecurring
	}
	if fields.RecurringInterval != nil {
		transaction.RecurringInterval = fields.RecurringInterval
	}

	if transaction.IsRecurring {
		if transaction.RecurringInterval == nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring transactions require an interval")
		}
		// Only an actual schedule change resets the cursor. Re-sending the
		// same recurrence values must not move it back over occurrences the
		// catch-up pass already materialized.
		scheduleChanged := !wasRecurring ||
			!transaction.Date.Equal(oldDate) ||
			oldInterval == nil ||
			*oldInterval != *transaction.RecurringInterval
		if scheduleChanged || transaction.NextRecurrenceDate == nil {
			next := recurrence.NextDate(transaction.Date, *transaction.RecurringInterval)
			transaction.NextRecurrenceDate = &next
		}
	} else {
		transaction.RecurringInterval = nil
		transaction.NextRecurrenceDate = nil
	}

	newDelta := transaction.Type.SignedAmount(transaction.Amount)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, oldWalletID, -oldDelta); err != nil {
			return err
		}
		if err := s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, transaction.WalletID, newDelta); err != nil {
			return err
		}
		return tx.Model(transaction).Select(
			"wallet_id", "category_id", "type", "amount", "description", "notes",
			"tags", "date", "is_recurring", "recurring_interval", "next_recurrence_date",
		).Updates(transaction).Error
	})
	if err != nil {
		return nil, nil, s.asAppError(err)
	}

	alerts := s.alertsFor(actx, transaction)
	return transaction, alerts, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect on
// the wallet atomically.
func (s *transactionService) DeleteTransaction(actx AuthContext, transactionID string) error {
	transaction, err := s.GetTransactionByID(actx, transactionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, transaction.WalletID,
			-transaction.Type.SignedAmount(transaction.Amount)); err != nil {
			return err
		}
		return tx.Delete(transaction).Error
	})
	if err != nil {
		return s.asAppError(err)
	}
	return nil
}

// Transfer moves money between two wallets of the organization. It debits the
// source only when it holds enough balance, credits the destination, and
// records a paired expense and income transaction, all in one database
// transaction.
func (s *transactionService) Transfer(actx AuthContext, fromWalletID, toWalletID string, amount int64, description string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if fromWalletID == toWalletID {
		return nil, apperrors.ErrSameWalletTransfer
	}

	fromWallet, err := s.walletSvc.GetWalletByID(actx, fromWalletID)
	if err != nil {
		return nil, err
	}
	toWallet, err := s.walletSvc.GetWalletByID(actx, toWalletID)
	if err != nil {
		return nil, err
	}

	expense := &models.Transaction{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		WalletID:       fromWallet.ID,
		Type:           models.TransactionTypeExpense,
		Amount:         amount,
		Description:    description,
	}
	income := &models.Transaction{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		WalletID:       toWallet.ID,
		Type:           models.TransactionTypeIncome,
		Amount:         amount,
		Description:    description,
	}
	if description == "" {
		expense.Description = fmt.Sprintf("Transfer to %s", toWallet.Name)
		income.Description = fmt.Sprintf("Transfer from %s", fromWallet.Name)
	}
	now := time.Now()
	expense.Date = now
	income.Date = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional debit: the balance guard makes overdrawing impossible
		// even under concurrent transfers.
		result := tx.Model(&models.Wallet{}).
			Where("id = ? AND organization_id = ? AND balance >= ?", fromWallet.ID, actx.OrganizationID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrInsufficientBalance
		}
		if err := s.walletSvc.ApplyBalanceDelta(tx, actx.OrganizationID, toWallet.ID, amount); err != nil {
			return err
		}
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		return tx.Create(income).Error
	})
	if err != nil {
		return nil, s.asAppError(err)
	}

	fromWallet, err = s.walletSvc.GetWalletByID(actx, fromWalletID)
	if err != nil {
		return nil, err
	}
	toWallet, err = s.walletSvc.GetWalletByID(actx, toWalletID)
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		FromWallet: fromWallet,
		ToWallet:   toWallet,
		Expense:    expense,
		Income:     income,
	}, nil
}

// validateCategory checks that the referenced category exists in the
// organization and matches the transaction type.
func (s *transactionService) validateCategory(actx AuthContext, categoryID *string, transactionType models.TransactionType) error {
	if categoryID == nil {
		return nil
	}

	var category models.Category
	err := s.db.Where("id = ? AND organization_id = ?", *categoryID, actx.OrganizationID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if string(category.Type) != string(transactionType) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category type does not match transaction type")
	}
	return nil
}

// alertsFor evaluates budget alerts for an expense mutation. Alert evaluation
// is best-effort; a failure here never fails the mutation that triggered it.
func (s *transactionService) alertsFor(actx AuthContext, transaction *models.Transaction) []BudgetAlert {
	if transaction.Type != models.TransactionTypeExpense || s.budgetSvc == nil {
		return nil
	}
	alerts, err := s.budgetSvc.EvaluateAlerts(actx, transaction.Date, transaction.CategoryID, transaction.WalletID)
	if err != nil {
		return nil
	}
	return alerts
}

// asAppError passes through AppErrors raised inside transaction closures and
// wraps anything else as an internal error.
func (s *transactionService) asAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
