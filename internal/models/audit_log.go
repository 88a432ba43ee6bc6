package models

// AuditLog records a mutation performed through the API for traceability.
// Changes holds a JSON blob of the relevant request fields.
type AuditLog struct {
	Base
	OrganizationID string `gorm:"type:uuid;index" json:"organization_id"`
	UserID         string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action         string `gorm:"not null" json:"action"`
	ResourceType   string `gorm:"not null" json:"resource_type"`
	ResourceID     string `gorm:"type:uuid" json:"resource_id"`
	IPAddress      string `json:"ip_address"`
	Changes        string `gorm:"type:text" json:"changes"`
}
