package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTenantIsolation_NonMembersAreRejected(t *testing.T) {
	app := setupApp(t)
	ownerToken, _, _ := app.registerUser(t, "owner@test.com", "password123")
	orgID := app.createOrganization(t, ownerToken, "Team", "isolation-team")

	outsiderToken, _, _ := app.registerUser(t, "outsider@test.com", "password123")

	rec := app.request("GET", "/api/v1/wallets", "", outsiderToken, orgID)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "NOT_MEMBER" {
		t.Errorf("expected NOT_MEMBER, got %v", errObj["code"])
	}
}

func TestTenantIsolation_MissingHeaderRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "noheader@test.com", "password123")
	app.createOrganization(t, token, "Personal", "noheader-personal")

	rec := app.request("GET", "/api/v1/wallets", "", token, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "NO_ORGANIZATION" {
		t.Errorf("expected NO_ORGANIZATION, got %v", errObj["code"])
	}
}

func TestTenantIsolation_ResourcesAreScopedPerOrganization(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "twoorgs@test.com", "password123")
	orgA := app.createOrganization(t, token, "Org A", "scoped-org-a")
	orgB := app.createOrganization(t, token, "Org B", "scoped-org-b")

	walletA := app.createWallet(t, token, orgA, "A Wallet", 1000)

	// Org B sees none of Org A's wallets
	rec := app.request("GET", "/api/v1/wallets", "", token, orgB)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["total_items"].(float64) != 0 {
		t.Error("expected no wallets visible from the other organization")
	}

	// Direct lookup across tenants 404s
	rec = app.request("GET", "/api/v1/wallets/"+walletA, "", token, orgB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	// A transaction cannot reference a wallet from another organization
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"wallet_id":%q,"type":"EXPENSE","amount":100}`, walletA), token, orgB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTenantIsolation_AddMemberGrantsAccess(t *testing.T) {
	app := setupApp(t)
	ownerToken, _, _ := app.registerUser(t, "inviter@test.com", "password123")
	orgID := app.createOrganization(t, ownerToken, "Shared", "membership-shared")
	app.createWallet(t, ownerToken, orgID, "Shared Wallet", 5000)

	inviteeToken, _, _ := app.registerUser(t, "invitee@test.com", "password123")

	// Before the invite the invitee is shut out
	rec := app.request("GET", "/api/v1/wallets", "", inviteeToken, orgID)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before invite, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/members",
		`{"email":"invitee@test.com"}`, ownerToken, orgID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// After the invite the shared wallets are visible
	rec = app.request("GET", "/api/v1/wallets", "", inviteeToken, orgID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after invite, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Error("expected the shared wallet to be visible")
	}

	// Plain members cannot invite others
	app.registerUser(t, "third@test.com", "password123")
	rec = app.request("POST", "/api/v1/members",
		`{"email":"third@test.com"}`, inviteeToken, orgID)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner invite, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTenantIsolation_DefaultCategoriesSeededPerOrganization(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "seeded@test.com", "password123")
	orgID := app.createOrganization(t, token, "Personal", "seeded-personal")

	rec := app.request("GET", "/api/v1/categories?page_size=50", "", token, orgID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 12 {
		t.Errorf("expected 12 seeded categories, got %v", result["total_items"])
	}
	for _, item := range result["data"].([]interface{}) {
		category := item.(map[string]interface{})
		if category["is_default"] != true {
			t.Errorf("expected seeded category %v to be default", category["name"])
		}
	}
}
