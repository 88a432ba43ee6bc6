package services

import (
	"testing"
	"time"

	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/testutil"
)

func TestSeedDefaults(t *testing.T) {
	t.Run("seeds_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}

		testutil.AssertNoError(t, categorySvc.SeedDefaults(actx))

		var count int64
		db.Model(&models.Category{}).Where("organization_id = ?", org.ID).Count(&count)
		if count == 0 {
			t.Fatal("expected seeded categories")
		}

		// Re-seeding is a no-op.
		testutil.AssertNoError(t, categorySvc.SeedDefaults(actx))
		var after int64
		db.Model(&models.Category{}).Where("organization_id = ?", org.ID).Count(&after)
		if after != count {
			t.Errorf("expected %d categories after reseed, got %d", count, after)
		}
	})

	t.Run("skipped_when_categories_exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, categorySvc.SeedDefaults(actx))

		var count int64
		db.Model(&models.Category{}).Where("organization_id = ?", org.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 category, got %d", count)
		}
	})
}

func TestCreateCategory(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}

		category, err := categorySvc.CreateCategory(actx, "Groceries", models.CategoryTypeExpense, "#f97316", "shopping-cart")
		testutil.AssertNoError(t, err)
		if category.Type != models.CategoryTypeExpense {
			t.Errorf("expected EXPENSE, got %s", category.Type)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}

		_, err := categorySvc.CreateCategory(actx, "Groceries", models.CategoryTypeExpense, "", "")
		testutil.AssertNoError(t, err)
		_, err = categorySvc.CreateCategory(actx, "Groceries", models.CategoryTypeExpense, "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_different_organizations", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org1 := testutil.CreateTestOrganization(t, db, user.ID)
		org2 := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := categorySvc.CreateCategory(AuthContext{UserID: user.ID, OrganizationID: org1.ID}, "Groceries", models.CategoryTypeExpense, "", "")
		testutil.AssertNoError(t, err)
		_, err = categorySvc.CreateCategory(AuthContext{UserID: user.ID, OrganizationID: org2.ID}, "Groceries", models.CategoryTypeExpense, "", "")
		testutil.AssertNoError(t, err)
	})
}

func TestGetCategories(t *testing.T) {
	t.Run("filters_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeIncome)
		testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)
		testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		expense := models.CategoryTypeExpense
		resp, err := categorySvc.GetCategories(actx, &expense, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(resp.Data) != 2 {
			t.Errorf("expected 2 expense categories, got %d", len(resp.Data))
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		category := testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		updated, err := categorySvc.UpdateCategory(actx, category.ID, "Renamed", "", "")
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected Renamed, got %s", updated.Name)
		}
	})

	t.Run("rename_collision", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		a := testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)
		b := testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		_, err := categorySvc.UpdateCategory(actx, b.ID, a.Name, "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("deletes_unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		category := testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, categorySvc.DeleteCategory(actx, category.ID))

		_, err := categorySvc.GetCategoryByID(actx, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("blocked_while_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		categorySvc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		actx := AuthContext{UserID: user.ID, OrganizationID: org.ID}
		wallet := testutil.CreateTestWallet(t, db, org.ID, user.ID)
		category := testutil.CreateTestCategory(t, db, org.ID, user.ID, models.CategoryTypeExpense)

		tx := testutil.CreateTestTransaction(t, db, org.ID, user.ID, wallet.ID, models.TransactionTypeExpense, 1000, time.Now())
		db.Model(tx).Update("category_id", category.ID)

		err := categorySvc.DeleteCategory(actx, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")

		// Still present after the refused delete.
		_, err = categorySvc.GetCategoryByID(actx, category.ID)
		testutil.AssertNoError(t, err)
	})
}
