package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// WalletHandler handles wallet-related requests.
type WalletHandler struct {
	walletService services.WalletServicer
	auditService  services.AuditServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer, auditService services.AuditServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService, auditService: auditService}
}

// CreateWalletRequest represents the request payload for creating a wallet.
type CreateWalletRequest struct {
	Name           string            `json:"name" binding:"required,max=100"`
	Type           models.WalletType `json:"type" binding:"omitempty,wallet_type"`
	InitialBalance int64             `json:"initial_balance"`
	Currency       string            `json:"currency" binding:"omitempty,iso4217"`
	Color          string            `json:"color" binding:"max=20"`
	Icon           string            `json:"icon" binding:"max=50"`
}

// UpdateWalletRequest represents the request payload for updating a wallet.
// Balance is intentionally absent: it only moves through transactions.
type UpdateWalletRequest struct {
	Name     *string            `json:"name" binding:"omitempty,max=100"`
	Type     *models.WalletType `json:"type" binding:"omitempty,wallet_type"`
	Currency *string            `json:"currency" binding:"omitempty,iso4217"`
	Color    *string            `json:"color" binding:"omitempty,max=20"`
	Icon     *string            `json:"icon" binding:"omitempty,max=50"`
}

// CreateWallet handles the creation of a new wallet
// @Summary     Create a wallet
// @Description Create a new wallet in the active organization
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       request body CreateWalletRequest true "Wallet details"
// @Success     201 {object} models.Wallet "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.CreateWallet(actx, req.Name, req.Type, req.InitialBalance, req.Currency, req.Color, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "CREATE_WALLET", "wallet", wallet.ID, c.ClientIP(),
		map[string]interface{}{"name": wallet.Name, "type": string(wallet.Type)})

	c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
}

// GetWallets handles listing wallets
// @Summary     List wallets
// @Description Get a paginated list of the active organization's wallets with per-wallet transaction counts
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.WalletWithCount] "Paginated wallets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [get]
func (h *WalletHandler) GetWallets(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.walletService.GetWallets(actx, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWalletByID handles fetching a single wallet
// @Summary     Get wallet by ID
// @Description Get a specific wallet by ID
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Wallet ID"
// @Success     200 {object} models.Wallet "Wallet details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWalletByID(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWalletByID(actx, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// UpdateWallet handles updating wallet metadata
// @Summary     Update wallet
// @Description Update a wallet's metadata. Balance cannot be edited directly.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id      path string              true "Wallet ID"
// @Param       request body UpdateWalletRequest true "Fields to update"
// @Success     200 {object} models.Wallet "Wallet updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [put]
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.UpdateWallet(actx, c.Param("id"), services.WalletUpdateFields{
		Name:     req.Name,
		Type:     req.Type,
		Currency: req.Currency,
		Color:    req.Color,
		Icon:     req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "UPDATE_WALLET", "wallet", wallet.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// DeleteWallet handles deleting a wallet
// @Summary     Delete wallet
// @Description Delete a wallet and all of its transactions
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       id path string true "Wallet ID"
// @Success     200 {object} map[string]string "Wallet deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID := c.Param("id")
	if err := h.walletService.DeleteWallet(actx, walletID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "DELETE_WALLET", "wallet", walletID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Wallet deleted"})
}
