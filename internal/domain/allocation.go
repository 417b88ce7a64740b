package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vesting types accepted on an allocation category.
const (
	NoVesting     = "NO_VESTING"
	LinearVesting = "LINEAR_VESTING"
	CliffVesting  = "CLIFF_VESTING"
)

// IsValidVestingType reports whether v is one of the accepted vesting types.
func IsValidVestingType(v string) bool {
	switch v {
	case NoVesting, LinearVesting, CliffVesting:
		return true
	}
	return false
}

// AllocationCategory is one named slice of an asset's token supply. Tokens is
// the integer source of truth; Percentage is derived from it on every write
// and never drives a computation.
type AllocationCategory struct {
	AllocationID     uuid.UUID      `gorm:"column:allocation_id;type:uuid;primaryKey" json:"allocation_id"`
	AssetID          uuid.UUID      `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	IssuerID         uuid.UUID      `gorm:"column:issuer_id;type:uuid;not null;index" json:"issuer_id"`
	Category         string         `gorm:"column:category;not null" json:"category"`
	Tokens           int64          `gorm:"column:tokens;not null" json:"tokens"`
	Percentage       float64        `gorm:"column:percentage;type:decimal(11,8);not null" json:"percentage"`
	VestingType      string         `gorm:"column:vesting_type;type:varchar(20);not null;default:NO_VESTING" json:"vesting_type"`
	VestingStartDate *time.Time     `gorm:"column:vesting_start_date" json:"vesting_start_date"`
	VestingEndDate   *time.Time     `gorm:"column:vesting_end_date" json:"vesting_end_date"`
	CliffPeriod      *int           `gorm:"column:cliff_period" json:"cliff_period"`
	Description      *string        `gorm:"column:description" json:"description"`
	IsActive         bool           `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt        time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AllocationCategory) TableName() string {
	return "AllocationCategories"
}

func (a *AllocationCategory) BeforeCreate(tx *gorm.DB) error {
	if a.AllocationID == uuid.Nil {
		a.AllocationID = uuid.New()
	}
	return nil
}
