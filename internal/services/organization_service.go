package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// organizationService handles organization and membership logic.
type organizationService struct {
	db          *gorm.DB
	categorySvc CategoryServicer
}

// NewOrganizationService creates a new OrganizationServicer.
func NewOrganizationService(db *gorm.DB, categorySvc CategoryServicer) OrganizationServicer {
	return &organizationService{db: db, categorySvc: categorySvc}
}

// CreateOrganization creates an organization with the caller as owner and
// seeds the starter categories.
func (s *organizationService) CreateOrganization(userID, name, slug string) (*models.Organization, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "organization name is required")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "organization slug is required")
	}

	var count int64
	if err := s.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateSlug
	}

	org := &models.Organization{Name: name, Slug: slug}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		member := &models.Member{
			UserID:         userID,
			OrganizationID: org.ID,
			Role:           models.MemberRoleOwner,
		}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.categorySvc != nil {
		actx := AuthContext{UserID: userID, OrganizationID: org.ID}
		if err := s.categorySvc.SeedDefaults(actx); err != nil {
			return nil, err
		}
	}

	return org, nil
}

// GetUserOrganizations returns every organization the user belongs to.
func (s *organizationService) GetUserOrganizations(userID string) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.db.Joins("JOIN members ON members.organization_id = organizations.id").
		Where("members.user_id = ? AND members.deleted_at IS NULL", userID).
		Order("organizations.created_at ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return orgs, nil
}

// GetOrganizationByID retrieves an organization the user is a member of.
func (s *organizationService) GetOrganizationByID(userID, organizationID string) (*models.Organization, error) {
	member, err := s.IsMember(userID, organizationID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrOrganizationNotFound
	}

	var org models.Organization
	if err := s.db.Where("id = ?", organizationID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &org, nil
}

// IsMember reports whether the user belongs to the organization.
func (s *organizationService) IsMember(userID, organizationID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Member{}).
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// AddMember adds an existing user to the caller's organization by email.
// Only owners may add members.
func (s *organizationService) AddMember(actx AuthContext, email string, role models.MemberRole) (*models.Member, error) {
	var caller models.Member
	err := s.db.Where("user_id = ? AND organization_id = ?", actx.UserID, actx.OrganizationID).
		First(&caller).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if caller.Role != models.MemberRoleOwner {
		return nil, apperrors.ErrForbidden
	}

	var user models.User
	err = s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing int64
	if err := s.db.Model(&models.Member{}).
		Where("user_id = ? AND organization_id = ?", user.ID, actx.OrganizationID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user is already a member")
	}

	if role == "" {
		role = models.MemberRoleMember
	}
	member := &models.Member{
		UserID:         user.ID,
		OrganizationID: actx.OrganizationID,
		Role:           role,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}
