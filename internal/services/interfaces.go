package services

import (
	"time"

	"gorm.io/gorm"

	"centavo/internal/models"
	"centavo/internal/pagination"
)

// AuthContext carries the resolved request identity. It is threaded
// explicitly into every tenant-scoped call; services never read it from
// globals or request state. All queries made on behalf of an AuthContext are
// filtered by OrganizationID.
type AuthContext struct {
	UserID         string
	OrganizationID string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// OrganizationServicer defines the contract for organization and membership logic.
type OrganizationServicer interface {
	CreateOrganization(userID, name, slug string) (*models.Organization, error)
	GetUserOrganizations(userID string) ([]models.Organization, error)
	GetOrganizationByID(userID, organizationID string) (*models.Organization, error)
	IsMember(userID, organizationID string) (bool, error)
	AddMember(actx AuthContext, email string, role models.MemberRole) (*models.Member, error)
}

// WalletServicer defines the contract for wallet-related business logic.
type WalletServicer interface {
	CreateWallet(actx AuthContext, name string, walletType models.WalletType, initialBalance int64, currency, color, icon string) (*models.Wallet, error)
	GetWallets(actx AuthContext, page pagination.PageRequest) (*pagination.PageResponse[WalletWithCount], error)
	GetWalletByID(actx AuthContext, walletID string) (*models.Wallet, error)
	UpdateWallet(actx AuthContext, walletID string, fields WalletUpdateFields) (*models.Wallet, error)
	DeleteWallet(actx AuthContext, walletID string) error
	ApplyBalanceDelta(tx *gorm.DB, organizationID, walletID string, delta int64) error
}

// WalletWithCount is a wallet with its live transaction count, for list views.
type WalletWithCount struct {
	models.Wallet
	TransactionCount int64 `json:"transaction_count"`
}

// WalletUpdateFields holds optional wallet fields for partial updates.
type WalletUpdateFields struct {
	Name     *string
	Type     *models.WalletType
	Currency *string
	Color    *string
	Icon     *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(actx AuthContext, name string, categoryType models.CategoryType, color, icon string) (*models.Category, error)
	GetCategories(actx AuthContext, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(actx AuthContext, categoryID string) (*models.Category, error)
	UpdateCategory(actx AuthContext, categoryID string, name, color, icon string) (*models.Category, error)
	DeleteCategory(actx AuthContext, categoryID string) error
	SeedDefaults(actx AuthContext) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Nil fields are not applied, so an unset dimension matches everything.
type TransactionFilter struct {
	Search     string
	Type       *models.TransactionType
	CategoryID *string
	WalletID   *string
	FromDate   *time.Time
	ToDate     *time.Time
}

// CreateTransactionFields holds the inputs for creating a transaction.
type CreateTransactionFields struct {
	WalletID          string
	CategoryID        *string
	Type              models.TransactionType
	Amount            int64
	Description       string
	Notes             string
	Tags              string
	Date              time.Time
	IsRecurring       bool
	RecurringInterval *models.RecurringInterval
}

// TransactionUpdateFields holds optional transaction fields for partial
// updates. A nil field is left unchanged; CategoryID uses a double pointer so
// callers can distinguish "don't touch" from "clear".
type TransactionUpdateFields struct {
	WalletID          *string
	CategoryID        **string
	Type              *models.TransactionType
	Amount            *int64
	Description       *string
	Notes             *string
	Tags              *string
	Date              *time.Time
	IsRecurring       *bool
	RecurringInterval *models.RecurringInterval
}

// TransferResult holds the outcome of a wallet-to-wallet transfer.
type TransferResult struct {
	FromWallet *models.Wallet      `json:"from_wallet"`
	ToWallet   *models.Wallet      `json:"to_wallet"`
	Expense    *models.Transaction `json:"expense"`
	Income     *models.Transaction `json:"income"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(actx AuthContext, fields CreateTransactionFields) (*models.Transaction, []BudgetAlert, error)
	GetTransactions(actx AuthContext, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(actx AuthContext, transactionID string) (*models.Transaction, error)
	UpdateTransaction(actx AuthContext, transactionID string, fields TransactionUpdateFields) (*models.Transaction, []BudgetAlert, error)
	DeleteTransaction(actx AuthContext, transactionID string) error
	Transfer(actx AuthContext, fromWalletID, toWalletID string, amount int64, description string) (*TransferResult, error)
}

// BudgetAlert is the one-shot threshold notification returned alongside an
// expense mutation. It is never persisted.
type BudgetAlert struct {
	BudgetID   string `json:"budget_id"`
	BudgetName string `json:"budget_name"`
	Level      string `json:"level"` // "warning" or "exceeded"
	Spent      int64  `json:"spent"`
	Amount     int64  `json:"amount"`
	Percentage int    `json:"percentage"`
}

// BudgetWithSpent is a budget with its derived spend-to-date, for list views.
type BudgetWithSpent struct {
	models.Budget
	Spent int64 `json:"spent"`
}

// CreateBudgetFields holds the inputs for creating a budget. StartDate and
// EndDate may be zero, in which case the calendar window containing now is
// used.
type CreateBudgetFields struct {
	Name       string
	Amount     int64
	Period     models.BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
	CategoryID *string
	WalletID   *string
	AutoRenew  bool
	RenewDay   *int
}

// BudgetUpdateFields holds optional budget fields for partial updates.
type BudgetUpdateFields struct {
	Name       *string
	Amount     *int64
	CategoryID **string
	WalletID   **string
	AutoRenew  *bool
	RenewDay   **int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(actx AuthContext, fields CreateBudgetFields) (*models.Budget, error)
	GetBudgets(actx AuthContext, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithSpent], error)
	GetBudgetByID(actx AuthContext, budgetID string) (*models.Budget, error)
	UpdateBudget(actx AuthContext, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(actx AuthContext, budgetID string) error
	EvaluateAlerts(actx AuthContext, txDate time.Time, categoryID *string, walletID string) ([]BudgetAlert, error)
}

// RecurringResult reports how much work one catch-up pass performed.
type RecurringResult struct {
	ProcessedTransactions int `json:"processed_transactions"`
	RenewedBudgets        int `json:"renewed_budgets"`
}

// RecurringServicer defines the contract for the recurring catch-up processor.
type RecurringServicer interface {
	ProcessRecurring(actx AuthContext, now time.Time) (*RecurringResult, error)
	ProcessAllOrganizations(now time.Time) (*RecurringResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actx AuthContext, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
