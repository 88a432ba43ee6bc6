package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/services"
)

// OrganizationHandler handles organization and membership requests.
type OrganizationHandler struct {
	organizationService services.OrganizationServicer
	auditService        services.AuditServicer
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(organizationService services.OrganizationServicer, auditService services.AuditServicer) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService, auditService: auditService}
}

// CreateOrganizationRequest represents the request payload for creating an organization.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,min=2,max=50"`
}

// AddMemberRequest represents the request payload for inviting a member.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=owner member"`
}

// CreateOrganization handles the creation of a new organization
// @Summary     Create an organization
// @Description Create a new organization. The caller becomes its owner and a set of default categories is seeded.
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOrganizationRequest true "Organization details"
// @Success     201 {object} models.Organization "Organization created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Slug already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	organization, err := h.organizationService.CreateOrganization(userID, req.Name, req.Slug)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuthContext{UserID: userID, OrganizationID: organization.ID},
		"CREATE_ORGANIZATION", "organization", organization.ID, c.ClientIP(),
		map[string]interface{}{"name": organization.Name, "slug": organization.Slug})

	c.JSON(http.StatusCreated, gin.H{"organization": organization})
}

// GetOrganizations handles listing the caller's organizations
// @Summary     List my organizations
// @Description Get all organizations the authenticated user is a member of
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Organization "Organizations"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations [get]
func (h *OrganizationHandler) GetOrganizations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	organizations, err := h.organizationService.GetUserOrganizations(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": organizations})
}

// GetOrganization handles fetching a single organization
// @Summary     Get organization
// @Description Get an organization the authenticated user is a member of
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Organization ID"
// @Success     200 {object} models.Organization "Organization"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Organization not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	organization, err := h.organizationService.GetOrganizationByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": organization})
}

// AddMember handles inviting a user into the active organization
// @Summary     Add a member
// @Description Add an existing user to the active organization by email. Only owners may invite.
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Organization-ID header string true "Active organization ID"
// @Param       request body AddMemberRequest true "Member details"
// @Success     201 {object} models.Member "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input or already a member"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller is not an owner"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /members [post]
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	actx, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	role := models.MemberRole(req.Role)
	if role == "" {
		role = models.MemberRoleMember
	}

	member, err := h.organizationService.AddMember(actx, req.Email, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actx, "ADD_MEMBER", "member", member.ID, c.ClientIP(),
		map[string]interface{}{"email": req.Email, "role": string(role)})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}
