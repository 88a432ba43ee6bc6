package models

import "time"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "DAILY"
	BudgetPeriodWeekly  BudgetPeriod = "WEEKLY"
	BudgetPeriodMonthly BudgetPeriod = "MONTHLY"
	BudgetPeriodYearly  BudgetPeriod = "YEARLY"
)

// Budget represents a spending target over a date window. CategoryID and
// WalletID are optional scope filters; nil matches all. Spent is never stored,
// it is derived by summing matching expense transactions in the window.
//
// Auto-renewal produces a chain of rows: when the window expires, the
// processor inserts a successor covering the next period and flips AutoRenew
// off on the expired row, so each instance renews at most once. RenewDay
// anchors monthly renewals to a fixed day of month (salary-day semantics)
// instead of calendar month boundaries.
type Budget struct {
	Base
	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string       `gorm:"type:uuid;not null" json:"user_id"`
	Name           string       `gorm:"not null" json:"name"`
	Amount         int64        `gorm:"type:bigint;not null" json:"amount"`
	Period         BudgetPeriod `gorm:"not null;default:'MONTHLY'" json:"period"`
	StartDate      time.Time    `gorm:"not null" json:"start_date"`
	EndDate        time.Time    `gorm:"not null" json:"end_date"`
	CategoryID     *string      `gorm:"type:uuid" json:"category_id,omitempty"`
	WalletID       *string      `gorm:"type:uuid" json:"wallet_id,omitempty"`
	AutoRenew      bool         `gorm:"not null;default:false" json:"auto_renew"`
	RenewDay       *int         `json:"renew_day,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Wallet   *Wallet   `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
}
