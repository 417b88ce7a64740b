package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AllocationEvent is an append-only audit row written in the same transaction
// as the mutation it records (CREATED, UPDATED, DELETED).
type AllocationEvent struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	AssetID       uuid.UUID      `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	AllocationID  uuid.UUID      `gorm:"column:allocation_id;type:uuid;not null" json:"allocation_id"`
	EventType     string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorIssuerID uuid.UUID      `gorm:"column:actor_issuer_id;type:uuid;not null" json:"actor_issuer_id"`
	EventData     datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt     time.Time      `gorm:"column:createdAt" json:"createdAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AllocationEvent) TableName() string {
	return "AllocationEvents"
}

func (e *AllocationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
