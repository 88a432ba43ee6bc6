package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centavo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestOrganization creates an organization with the user as owner.
func CreateTestOrganization(t *testing.T, db *gorm.DB, userID string) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name: fmt.Sprintf("Test Org %d", nextID()),
		Slug: fmt.Sprintf("test-org-%d", nextID()),
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	member := &models.Member{
		UserID:         userID,
		OrganizationID: org.ID,
		Role:           models.MemberRoleOwner,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return org
}

// CreateTestWallet creates a cash wallet with zero balance.
func CreateTestWallet(t *testing.T, db *gorm.DB, orgID, userID string) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, orgID, userID, 0)
}

// CreateTestWalletWithBalance creates a cash wallet with the given balance (in centavos).
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, orgID, userID string, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		OrganizationID: orgID,
		UserID:         userID,
		Name:           fmt.Sprintf("Test Wallet %d", nextID()),
		Type:           models.WalletTypeCash,
		Balance:        balance,
		Currency:       "PHP",
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, orgID, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		OrganizationID: orgID,
		UserID:         userID,
		Name:           fmt.Sprintf("Test Category %d", nextID()),
		Type:           categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a non-recurring transaction. It writes the
// row only; the wallet balance is not touched.
func CreateTestTransaction(t *testing.T, db *gorm.DB, orgID, userID, walletID string, transactionType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		OrganizationID: orgID,
		UserID:         userID,
		WalletID:       walletID,
		Type:           transactionType,
		Amount:         amount,
		Description:    fmt.Sprintf("Test Transaction %d", nextID()),
		Date:           date,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestRecurringTemplate creates a recurrence template whose cursor is
// one interval after its date.
func CreateTestRecurringTemplate(t *testing.T, db *gorm.DB, orgID, userID, walletID string, transactionType models.TransactionType, amount int64, date time.Time, interval models.RecurringInterval, nextDate time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		OrganizationID:     orgID,
		UserID:             userID,
		WalletID:           walletID,
		Type:               transactionType,
		Amount:             amount,
		Description:        fmt.Sprintf("Test Recurring %d", nextID()),
		Date:               date,
		IsRecurring:        true,
		RecurringInterval:  &interval,
		NextRecurrenceDate: &nextDate,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test recurring template: %v", err)
	}
	return transaction
}

// CreateTestBudget creates a budget over the given window.
func CreateTestBudget(t *testing.T, db *gorm.DB, orgID, userID string, amount int64, period models.BudgetPeriod, start, end time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		OrganizationID: orgID,
		UserID:         userID,
		Name:           fmt.Sprintf("Test Budget %d", nextID()),
		Amount:         amount,
		Period:         period,
		StartDate:      start,
		EndDate:        end,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
