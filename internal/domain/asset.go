package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset is a tokenized property. TokenSupply is the fixed pool the allocation
// categories partition; it is frozen once any category exists.
type Asset struct {
	AssetID         uuid.UUID      `gorm:"column:asset_id;type:uuid;primaryKey" json:"asset_id"`
	IssuerID        uuid.UUID      `gorm:"column:issuer_id;type:uuid;not null;index" json:"issuer_id"`
	Name            string         `gorm:"column:name;not null" json:"name"`
	Description     *string        `gorm:"column:description" json:"description"`
	AddressLine     string         `gorm:"column:address_line" json:"address_line"`
	City            string         `gorm:"column:city" json:"city"`
	CountryCode     string         `gorm:"column:country_code;type:char(2)" json:"country_code"`
	Status          string         `gorm:"column:status;not null;default:draft" json:"status"`
	TokenSupply     int64          `gorm:"column:token_supply;not null;default:0" json:"token_supply"`
	TokenSymbol     string         `gorm:"column:token_symbol;type:varchar(12)" json:"token_symbol"`
	TokenPriceCents int64          `gorm:"column:token_price_cents;not null;default:0" json:"token_price_cents"`
	ImageURL        *string        `gorm:"column:image_url" json:"image_url"`
	CreatedAt       time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Asset) TableName() string {
	return "Assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.AssetID == uuid.Nil {
		a.AssetID = uuid.New()
	}
	return nil
}
