package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"centavo/internal/services"
)

// RecurringHandler exposes the recurring catch-up processor over HTTP so a
// client can trigger a pass on demand instead of waiting for the next
// scheduled run.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// ProcessRecurring runs one catch-up pass for the active organization
// @Summary     Process recurring items
// @Description Materialize all overdue occurrences of recurring transactions and renew expired auto-renew budgets for the active organization. Idempotent: a second call with no elapsed time does nothing.
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Success     200 {object} services.RecurringResult "Catch-up results"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/process [post]
func (h *RecurringHandler) ProcessRecurring(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.ProcessRecurring(actx, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.ProcessedTransactions > 0 || result.RenewedBudgets > 0 {
		h.auditService.Log(actx, "PROCESS_RECURRING", "organization", actx.OrganizationID, c.ClientIP(),
			map[string]interface{}{
				"processed_transactions": result.ProcessedTransactions,
				"renewed_budgets":        result.RenewedBudgets,
			})
	}

	c.JSON(http.StatusOK, result)
}
