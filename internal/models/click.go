package models

import (
	"time"
)

// Click is append-only. ProductID carries no foreign key: clicks outlive
// deleted products and may reference ids the catalog never had.
type Click struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  *uint     `gorm:"index" json:"product_id"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	Browser    string    `gorm:"size:50" json:"browser,omitempty"`
	OS         string    `gorm:"size:100" json:"os,omitempty"`
	DeviceType string    `gorm:"size:50" json:"device_type,omitempty"`
	Country    string    `gorm:"size:100;default:'Unknown'" json:"country,omitempty"`
	Referrer   string    `gorm:"size:255;default:'Direct'" json:"referrer,omitempty"`

	// IPAddress is only used for GeoIP lookup and is never persisted.
	IPAddress string `gorm:"-" json:"-"`
}

func (Click) TableName() string {
	return "clicks"
}
