package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Category represents a transaction category. Type is fixed at creation and
// never editable afterwards.
type Category struct {
	Base
	OrganizationID string       `gorm:"type:uuid;not null;uniqueIndex:idx_category_org_name" json:"organization_id"`
	UserID         string       `gorm:"type:uuid;not null" json:"user_id"`
	Name           string       `gorm:"not null;uniqueIndex:idx_category_org_name" json:"name"`
	Type           CategoryType `gorm:"not null" json:"type"`
	Color          string       `json:"color"`
	Icon           string       `json:"icon"`
	IsDefault      bool         `gorm:"not null;default:false" json:"is_default"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
