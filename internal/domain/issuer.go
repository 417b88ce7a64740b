package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issuer is the tenant: a property company that tokenizes assets. All asset
// and allocation reads/writes are scoped to the caller's issuer.
type Issuer struct {
	IssuerID       uuid.UUID      `gorm:"column:issuer_id;type:uuid;primaryKey" json:"issuer_id"`
	IssuerName     string         `gorm:"column:issuer_name;not null;uniqueIndex" json:"issuer_name"`
	IssuerCode     string         `gorm:"column:issuer_code;type:varchar(10);not null;uniqueIndex" json:"issuer_code"`
	CountryCode    string         `gorm:"column:country_code;type:char(2);not null" json:"country_code"`
	KybStatus      string         `gorm:"column:kyb_status;not null;default:pending" json:"kyb_status"`
	RegistrationID *string        `gorm:"column:registration_id" json:"registration_id"`
	LogoURL        *string        `gorm:"column:logo_url" json:"logo_url"`
	CreatedAt      time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Issuer) TableName() string {
	return "Issuers"
}

// BeforeCreate ensures issuer_id is set for DBs without default uuid.
func (i *Issuer) BeforeCreate(tx *gorm.DB) error {
	if i.IssuerID == uuid.Nil {
		i.IssuerID = uuid.New()
	}
	return nil
}
