package services

import (
	"testing"
	"time"

	"centavo/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("creates_and_hashes_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		user, err := userSvc.CreateUser("Alice@Example.com", "secret123", "Alice", "Reyes")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Password == "secret123" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		_, err := userSvc.CreateUser("bob@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)
		_, err = userSvc.CreateUser("bob@example.com", "other456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		_, err := userSvc.CreateUser("", "secret123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		created, err := userSvc.CreateUser("carol@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		user, err := userSvc.AttemptLogin("carol@example.com", "secret123")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Error("expected same user")
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login recorded")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		_, err := userSvc.CreateUser("dave@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		_, err = userSvc.AttemptLogin("dave@example.com", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email_same_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		_, err := userSvc.AttemptLogin("nobody@example.com", "whatever")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		_, err := userSvc.CreateUser("eve@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		for i := 0; i < maxFailedLoginAttempts; i++ {
			_, err = userSvc.AttemptLogin("eve@example.com", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		// Even the right password is refused while locked.
		_, err = userSvc.AttemptLogin("eve@example.com", "secret123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("success_resets_failure_count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		created, err := userSvc.CreateUser("frank@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		_, err = userSvc.AttemptLogin("frank@example.com", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		_, err = userSvc.AttemptLogin("frank@example.com", "secret123")
		testutil.AssertNoError(t, err)

		fresh, err := userSvc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)
		if fresh.FailedLoginAttempts != 0 {
			t.Errorf("expected counter reset, got %d", fresh.FailedLoginAttempts)
		}
	})

	t.Run("lock_expires", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		created, err := userSvc.CreateUser("grace@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		expired := time.Now().Add(-time.Minute)
		db.Model(created).Updates(map[string]interface{}{
			"failed_login_attempts": maxFailedLoginAttempts,
			"locked_until":          expired,
		})

		_, err = userSvc.AttemptLogin("grace@example.com", "secret123")
		testutil.AssertNoError(t, err)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	t.Run("store_and_read_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		user, err := userSvc.CreateUser("henry@example.com", "secret123", "", "")
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, userSvc.StoreRefreshTokenHash(user.ID, "abc123"))
		hash, err := userSvc.GetRefreshTokenHash(user.ID)
		testutil.AssertNoError(t, err)
		if hash != "abc123" {
			t.Errorf("expected stored hash, got %q", hash)
		}

		// Rotating the token replaces the hash, invalidating the old one.
		testutil.AssertNoError(t, userSvc.StoreRefreshTokenHash(user.ID, "def456"))
		hash, _ = userSvc.GetRefreshTokenHash(user.ID)
		if hash != "def456" {
			t.Errorf("expected rotated hash, got %q", hash)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userSvc := NewUserService(db)

		err := userSvc.StoreRefreshTokenHash("missing", "abc")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
