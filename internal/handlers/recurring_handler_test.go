package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"centavo/internal/services"
)

type mockRecurringService struct {
	processRecurringFn func(actx services.AuthContext, now time.Time) (*services.RecurringResult, error)
}

func (m *mockRecurringService) ProcessRecurring(actx services.AuthContext, now time.Time) (*services.RecurringResult, error) {
	if m.processRecurringFn != nil {
		return m.processRecurringFn(actx, now)
	}
	return &services.RecurringResult{}, nil
}

func (m *mockRecurringService) ProcessAllOrganizations(_ time.Time) (*services.RecurringResult, error) {
	return &services.RecurringResult{}, nil
}

var _ services.RecurringServicer = (*mockRecurringService)(nil)

func TestRecurringHandler_ProcessRecurring(t *testing.T) {
	t.Run("returns catch-up totals for the active organization", func(t *testing.T) {
		var gotOrg string
		recurringSvc := &mockRecurringService{
			processRecurringFn: func(actx services.AuthContext, _ time.Time) (*services.RecurringResult, error) {
				gotOrg = actx.OrganizationID
				return &services.RecurringResult{ProcessedTransactions: 3, RenewedBudgets: 1}, nil
			},
		}
		handler := NewRecurringHandler(recurringSvc, &mockAuditService{})
		r := gin.New()
		r.POST("/recurring/process", injectAuth("user-1", "org-1"), handler.ProcessRecurring)

		rec := doRequest(r, "POST", "/recurring/process", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotOrg != "org-1" {
			t.Errorf("expected org-1, got %s", gotOrg)
		}
		result := parseJSON(t, rec)
		if result["processed_transactions"].(float64) != 3 {
			t.Errorf("expected 3 processed transactions, got %v", result["processed_transactions"])
		}
		if result["renewed_budgets"].(float64) != 1 {
			t.Errorf("expected 1 renewed budget, got %v", result["renewed_budgets"])
		}
	})

	t.Run("requires a resolved organization", func(t *testing.T) {
		handler := NewRecurringHandler(&mockRecurringService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/recurring/process", injectAuth("user-1", ""), handler.ProcessRecurring)

		rec := doRequest(r, "POST", "/recurring/process", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
