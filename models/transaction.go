package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one customer order. The order total is stored on the row and
// may include adjustments that are not present in its line items.
type Transaction struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     string          `gorm:"size:50;not null;uniqueIndex" json:"order_id"`
	TableId     *int            `gorm:"index" json:"table_id,omitempty"`
	Msisdn      *string         `gorm:"size:30" json:"msisdn,omitempty"`
	PaymentVia  *string         `gorm:"size:50" json:"payment_via,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Status      OrderStatus     `gorm:"size:20;not null;default:pending;index:idx_transactions_status_created" json:"status"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index:idx_transactions_status_created" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:TransactionId" json:"items,omitempty"`
}

// OrderItem is a line of a Transaction. Price and Total are captured at order
// time, so later menu price changes do not rewrite history.
type OrderItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	ItemId        int             `gorm:"index;not null" json:"item_id"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
