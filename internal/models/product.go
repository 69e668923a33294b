package models

import (
	"time"
)

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:200" json:"name"`
	Category     string    `gorm:"size:100" json:"category"`
	Description  string    `gorm:"type:text" json:"description"`
	ImageURL     string    `gorm:"type:text" json:"image_url"`
	AffiliateURL string    `gorm:"not null;type:text" json:"affiliate_url"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
