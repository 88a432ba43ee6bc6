package models

// MemberRole represents a user's role within an organization
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Organization is the multi-tenant partition boundary. Every wallet, category,
// transaction, and budget belongs to exactly one organization.
type Organization struct {
	Base
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	Members []Member `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

// Member links a user to an organization with a role.
type Member struct {
	Base
	UserID         string     `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_org" json:"user_id"`
	OrganizationID string     `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_org" json:"organization_id"`
	Role           MemberRole `gorm:"not null;default:'member'" json:"role"`

	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
