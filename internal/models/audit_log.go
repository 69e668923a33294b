package models

import (
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:120;index" json:"email"`     // Empty for anonymous login attempts
	Action    string    `gorm:"size:50;not null" json:"action"`  // e.g., "LOGIN", "LOGIN_DENIED", "CREATE_PRODUCT"
	EntityID  string    `gorm:"size:50" json:"entity_id"`        // Product ID or email affected
	Details   string    `gorm:"type:text" json:"details"`        // JSON description
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
