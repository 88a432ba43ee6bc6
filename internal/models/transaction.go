package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// SignedAmount returns the amount with the sign implied by the transaction
// type: positive for income, negative for expense.
func (t TransactionType) SignedAmount(amount int64) int64 {
	if t == TransactionTypeExpense {
		return -amount
	}
	return amount
}

// RecurringInterval represents how often a recurring transaction repeats
type RecurringInterval string

const (
	RecurringIntervalDaily    RecurringInterval = "DAILY"
	RecurringIntervalWeekly   RecurringInterval = "WEEKLY"
	RecurringIntervalBiweekly RecurringInterval = "BIWEEKLY"
	RecurringIntervalMonthly  RecurringInterval = "MONTHLY"
	RecurringIntervalYearly   RecurringInterval = "YEARLY"
)

// Transaction represents a ledger entry. A transaction with IsRecurring set is
// a recurrence template: the catch-up processor copies it into new
// non-recurring rows for each missed occurrence and advances
// NextRecurrenceDate, but never converts the template itself.
// NextRecurrenceDate is non-nil exactly when IsRecurring and RecurringInterval
// are set, and only ever moves forward.
type Transaction struct {
	Base
	OrganizationID string          `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string          `gorm:"type:uuid;not null" json:"user_id"`
	WalletID       string          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	CategoryID     *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type           TransactionType `gorm:"not null" json:"type"`
	Amount         int64           `gorm:"type:bigint;not null" json:"amount"`
	Description    string          `json:"description"`
	Notes          string          `json:"notes"`
	Tags           string          `json:"tags"`
	Date           time.Time       `gorm:"not null;index" json:"date"`

	IsRecurring        bool               `gorm:"not null;default:false" json:"is_recurring"`
	RecurringInterval  *RecurringInterval `json:"recurring_interval,omitempty"`
	NextRecurrenceDate *time.Time         `gorm:"index" json:"next_recurrence_date,omitempty"`

	Wallet   Wallet    `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
