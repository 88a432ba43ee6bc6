package models

// WalletType represents the kind of wallet
type WalletType string

const (
	WalletTypeCash       WalletType = "cash"
	WalletTypeBank       WalletType = "bank"
	WalletTypeCard       WalletType = "card"
	WalletTypeSavings    WalletType = "savings"
	WalletTypeInvestment WalletType = "investment"
	WalletTypeOther      WalletType = "other"
)

// Wallet represents a money container within an organization. Balance is
// maintained incrementally: it always equals the sum of signed amounts of the
// wallet's live transactions and is never recomputed on read.
type Wallet struct {
	Base
	OrganizationID string     `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string     `gorm:"type:uuid;not null" json:"user_id"`
	Name           string     `gorm:"not null" json:"name"`
	Type           WalletType `gorm:"not null;default:'cash'" json:"type"`
	Balance        int64      `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency       string     `gorm:"not null;default:'PHP'" json:"currency"`
	Color          string     `json:"color"`
	Icon           string     `json:"icon"`

	Transactions []Transaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}
