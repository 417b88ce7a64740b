package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order records an investor's intent to buy tokens from a category plus its
// payment state. Orders never move tokens between categories.
type Order struct {
	OrderID         uuid.UUID      `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	AssetID         uuid.UUID      `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	AllocationID    uuid.UUID      `gorm:"column:allocation_id;type:uuid;not null" json:"allocation_id"`
	InvestorEmail   string         `gorm:"column:investor_email;not null" json:"investor_email"`
	Tokens          int64          `gorm:"column:tokens;not null" json:"tokens"`
	AmountCents     int64          `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency        string         `gorm:"column:currency;type:char(3);not null;default:usd" json:"currency"`
	Status          string         `gorm:"column:status;not null;default:pending" json:"status"`
	PaymentIntentID *string        `gorm:"column:payment_intent_id;uniqueIndex" json:"payment_intent_id"`
	PaidAt          *time.Time     `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt       time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "Orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	return nil
}
