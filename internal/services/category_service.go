package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service instance.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

type defaultCategory struct {
	Name  string
	Type  models.CategoryType
	Color string
	Icon  string
}

var defaultCategories = []defaultCategory{
	{Name: "Salary", Type: models.CategoryTypeIncome, Color: "#22c55e", Icon: "banknote"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Color: "#10b981", Icon: "laptop"},
	{Name: "Investments", Type: models.CategoryTypeIncome, Color: "#14b8a6", Icon: "trending-up"},
	{Name: "Other Income", Type: models.CategoryTypeIncome, Color: "#84cc16", Icon: "plus-circle"},
	{Name: "Food & Dining", Type: models.CategoryTypeExpense, Color: "#f97316", Icon: "utensils"},
	{Name: "Transportation", Type: models.CategoryTypeExpense, Color: "#3b82f6", Icon: "car"},
	{Name: "Housing", Type: models.CategoryTypeExpense, Color: "#8b5cf6", Icon: "home"},
	{Name: "Utilities", Type: models.CategoryTypeExpense, Color: "#eab308", Icon: "zap"},
	{Name: "Shopping", Type: models.CategoryTypeExpense, Color: "#ec4899", Icon: "shopping-bag"},
	{Name: "Health", Type: models.CategoryTypeExpense, Color: "#ef4444", Icon: "heart-pulse"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Color: "#a855f7", Icon: "clapperboard"},
	{Name: "Other Expenses", Type: models.CategoryTypeExpense, Color: "#6b7280", Icon: "minus-circle"},
}

// SeedDefaults inserts the starter category set for an organization. It is a
// no-op when the organization already has any category, so re-running it
// never duplicates rows.
func (s *categoryService) SeedDefaults(actx AuthContext) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("organization_id = ?", actx.OrganizationID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil
	}

	categories := make([]models.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		categories = append(categories, models.Category{
			OrganizationID: actx.OrganizationID,
			UserID:         actx.UserID,
			Name:           d.Name,
			Type:           d.Type,
			Color:          d.Color,
			Icon:           d.Icon,
			IsDefault:      true,
		})
	}

	if err := s.db.Create(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateCategory creates a category. Names are unique per organization.
func (s *categoryService) CreateCategory(actx AuthContext, name string, categoryType models.CategoryType, color, icon string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var existing int64
	if err := s.db.Model(&models.Category{}).
		Where("organization_id = ? AND name = ?", actx.OrganizationID, name).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		OrganizationID: actx.OrganizationID,
		UserID:         actx.UserID,
		Name:           name,
		Type:           categoryType,
		Color:          color,
		Icon:           icon,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories returns the organization's categories, optionally filtered by type.
func (s *categoryService) GetCategories(actx AuthContext, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	query := s.db.Model(&models.Category{}).Where("organization_id = ?", actx.OrganizationID)
	if categoryType != nil {
		query = query.Where("type = ?", *categoryType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := query.Order("name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(categories, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetCategoryByID retrieves a category scoped to the caller's organization.
func (s *categoryService) GetCategoryByID(actx AuthContext, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND organization_id = ?", categoryID, actx.OrganizationID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a category's name, color, or icon. The type is
// immutable after creation; flipping it would silently reclassify historical
// transactions.
func (s *categoryService) UpdateCategory(actx AuthContext, categoryID string, name, color, icon string) (*models.Category, error) {
	category, err := s.GetCategoryByID(actx, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" && name != category.Name {
		var existing int64
		if err := s.db.Model(&models.Category{}).
			Where("organization_id = ? AND name = ? AND id != ?", actx.OrganizationID, name, category.ID).
			Count(&existing).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
		updates["name"] = name
	}
	if color != "" {
		updates["color"] = color
	}
	if icon != "" {
		updates["icon"] = icon
	}

	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// DeleteCategory removes a category. Deletion is refused while any
// transaction still references it; callers must recategorize or delete those
// transactions first.
func (s *categoryService) DeleteCategory(actx AuthContext, categoryID string) error {
	category, err := s.GetCategoryByID(actx, categoryID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).
		Where("organization_id = ? AND category_id = ?", actx.OrganizationID, category.ID).
		Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.WithMessage(apperrors.ErrCategoryInUse,
			fmt.Sprintf("Category is used by %d transaction(s)", inUse))
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
