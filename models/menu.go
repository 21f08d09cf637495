package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category and Item mirror the menu tables maintained by the back office.
// CRUD for them lives outside this service; reports only read them.

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Item struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CategoryId  *int            `gorm:"index" json:"category_id,omitempty"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	ImagePath   *string         `gorm:"size:255" json:"image_path,omitempty"`
	IsAvailable *bool           `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type RestaurantTable struct {
	ID          int       `gorm:"primary_key" json:"id"`
	TableNumber string    `gorm:"size:20;not null;uniqueIndex" json:"table_number"`
	Capacity    int       `gorm:"not null;default:4" json:"capacity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
