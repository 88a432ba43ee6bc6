package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// walletService handles wallet-related business logic.
type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new wallet service instance.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

// CreateWallet creates a wallet in the caller's organization. The initial
// balance is recorded directly on the wallet; no opening transaction is
// created.
func (s *walletService) CreateWallet(actx AuthContext, name string, walletType models.WalletType, initialBalance int64, currency, color, icon string) (*models.Wallet, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}
	if currency == "" {
		currency = "PHP"
	}

	wallet := &models.Wallet{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		Name:           name,
		Type:           walletType,
		Balance:        initialBalance,
		Currency:       currency,
		Color:          color,
		Icon:           icon,
	}

	if err := s.db.Create(wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return wallet, nil
}

// GetWallets returns the organization's wallets with their transaction counts.
func (s *walletService) GetWallets(actx AuthContext, page pagination.PageRequest) (*pagination.PageResponse[WalletWithCount], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.Wallet{}).
		Where("organization_id = ?", actx.OrganizationID).
		Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var wallets []models.Wallet
	if err := s.db.Where("organization_id = ?", actx.OrganizationID).
		Order("created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	items := make([]WalletWithCount, 0, len(wallets))
	for _, w := range wallets {
		var count int64
		if err := s.db.Model(&models.Transaction{}).
			Where("organization_id = ? AND wallet_id = ?", actx.OrganizationID, w.ID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		items = append(items, WalletWithCount{Wallet: w, TransactionCount: count})
	}

	resp := pagination.NewPageResponse(items, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetWalletByID retrieves a wallet scoped to the caller's organization.
func (s *walletService) GetWalletByID(actx AuthContext, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.Where("id = ? AND organization_id = ?", walletID, actx.OrganizationID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// UpdateWallet applies a partial update to a wallet's metadata. Balance is
// never updated here; it only moves through transactions and transfers.
func (s *walletService) UpdateWallet(actx AuthContext, walletID string, fields WalletUpdateFields) (*models.Wallet, error) {
	wallet, err := s.GetWalletByID(actx, walletID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.Name != nil {
		if *fields.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
		}
		updates["name"] = *fields.Name
	}
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}
	if fields.Currency != nil {
		updates["currency"] = *fields.Currency
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}

	if len(updates) == 0 {
		return wallet, nil
	}

	if err := s.db.Model(wallet).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return wallet, nil
}

// DeleteWallet removes a wallet together with all of its transactions. The
// two deletes run in one database transaction so a failure leaves both in
// place.
func (s *walletService) DeleteWallet(actx AuthContext, walletID string) error {
	wallet, err := s.GetWalletByID(actx, walletID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND wallet_id = ?", actx.OrganizationID, wallet.ID).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(wallet).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}

// ApplyBalanceDelta atomically increments a wallet's balance inside the
// caller's database transaction. The increment happens in SQL rather than
// read-modify-write, so concurrent mutations cannot lose updates.
func (s *walletService) ApplyBalanceDelta(tx *gorm.DB, organizationID, walletID string, delta int64) error {
	result := tx.Model(&models.Wallet{}).
		Where("id = ? AND organization_id = ?", walletID, organizationID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}
