package allocations

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetDirectory is the asset-management collaborator: it resolves an asset to
// its fixed token supply and owning issuer. The engine never mutates assets.
type AssetDirectory interface {
	TokenSupplyAndOwner(ctx context.Context, assetID uuid.UUID) (int64, uuid.UUID, error)
}

// Service orchestrates allocation category mutations. Every mutating call runs
// its read-compute-write sequence in one transaction, serialized per asset so
// two concurrent calls cannot rescale siblings from the same stale snapshot.
type Service struct {
	DB     *gorm.DB
	Assets AssetDirectory

	mu         sync.Mutex
	assetLocks map[uuid.UUID]*assetLock
}

type assetLock struct {
	mu   sync.Mutex
	refs int
}

// lockAsset serializes mutations for one asset; distinct assets proceed in
// parallel. Entries are refcounted and dropped when the last holder releases,
// so the map only tracks assets with in-flight mutations. Returns the unlock
// func.
func (s *Service) lockAsset(assetID uuid.UUID) func() {
	s.mu.Lock()
	if s.assetLocks == nil {
		s.assetLocks = make(map[uuid.UUID]*assetLock)
	}
	l, ok := s.assetLocks[assetID]
	if !ok {
		l = &assetLock{}
		s.assetLocks[assetID] = l
	}
	l.refs++
	s.mu.Unlock()
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.assetLocks, assetID)
		}
		s.mu.Unlock()
	}
}

// CreateCategoryInput is the payload for CreateCategory.
type CreateCategoryInput struct {
	Category         string     `json:"category"`
	Tokens           int64      `json:"tokens"`
	Description      *string    `json:"description"`
	VestingType      string     `json:"vesting_type"`
	VestingStartDate *time.Time `json:"vesting_start_date"`
	VestingEndDate   *time.Time `json:"vesting_end_date"`
	CliffPeriod      *int       `json:"cliff_period"`
	IsActive         *bool      `json:"is_active"`
}

// UpdateCategoryInput is an explicit partial update: nil fields are left
// untouched, set fields are validated and merged.
type UpdateCategoryInput struct {
	Category         *string    `json:"category"`
	Tokens           *int64     `json:"tokens"`
	Description      *string    `json:"description"`
	VestingType      *string    `json:"vesting_type"`
	VestingStartDate *time.Time `json:"vesting_start_date"`
	VestingEndDate   *time.Time `json:"vesting_end_date"`
	CliffPeriod      *int       `json:"cliff_period"`
	IsActive         *bool      `json:"is_active"`
}

// Stats is the aggregate view of one asset's allocation state.
type Stats struct {
	TotalTokens         int64                       `json:"total_tokens"`
	TotalPercentage     float64                     `json:"total_percentage"`
	RemainingTokens     int64                       `json:"remaining_tokens"`
	RemainingPercentage float64                     `json:"remaining_percentage"`
	IsValid             bool                        `json:"is_valid"`
	Categories          []domain.AllocationCategory `json:"categories"`
}

// DeleteResult carries the removed category plus fresh stats over the rest.
type DeleteResult struct {
	DeletedAllocation domain.AllocationCategory `json:"deleted_allocation"`
	Stats             Stats                     `json:"stats"`
}

// CreateCategory carves tokens out of the asset's supply for a new category,
// rescaling every existing category in the same transaction so the per-asset
// token sum still equals the supply exactly.
func (s *Service) CreateCategory(ctx context.Context, assetID, issuerID uuid.UUID, in CreateCategoryInput) (*domain.AllocationCategory, error) {
	if in.Category == "" {
		return nil, apperror.BadRequest("Category name is required")
	}
	if err := guardPositiveTokens(in.Tokens); err != nil {
		return nil, err
	}
	vestingType := in.VestingType
	if vestingType == "" {
		vestingType = domain.NoVesting
	}
	if err := guardVesting(vestingType, in.VestingStartDate, in.VestingEndDate, in.CliffPeriod); err != nil {
		return nil, err
	}

	unlock := s.lockAsset(assetID)
	defer unlock()

	supply, owner, err := s.Assets.TokenSupplyAndOwner(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if owner != issuerID {
		return nil, apperror.NotFound("Asset not found")
	}
	if err := guardSupplyDefined(supply); err != nil {
		return nil, err
	}

	var created *domain.AllocationCategory
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []domain.AllocationCategory
		if err := tx.Where("asset_id = ?", assetID).Find(&existing).Error; err != nil {
			return err
		}
		if err := guardUniqueName(existing, in.Category, uuid.Nil); err != nil {
			return err
		}
		if err := guardFloorRoom(supply, in.Tokens, len(existing)); err != nil {
			return err
		}

		rescaled := redistributeForInsert(supply, snapshotOf(existing), in.Tokens)
		for i := range existing {
			existing[i].Tokens = rescaled[existing[i].AllocationID]
			existing[i].Percentage = roundPercentage(existing[i].Tokens, supply)
			if err := tx.Save(&existing[i]).Error; err != nil {
				return err
			}
		}

		isActive := true
		if in.IsActive != nil {
			isActive = *in.IsActive
		}
		cat := domain.AllocationCategory{
			AssetID:          assetID,
			IssuerID:         issuerID,
			Category:         in.Category,
			Tokens:           in.Tokens,
			Percentage:       roundPercentage(in.Tokens, supply),
			VestingType:      vestingType,
			VestingStartDate: in.VestingStartDate,
			VestingEndDate:   in.VestingEndDate,
			CliffPeriod:      in.CliffPeriod,
			Description:      in.Description,
			IsActive:         isActive,
		}
		if err := tx.Create(&cat).Error; err != nil {
			return err
		}
		if err := writeEvent(tx, assetID, cat.AllocationID, issuerID, "CREATED", map[string]interface{}{
			"category":            cat.Category,
			"tokens":              cat.Tokens,
			"rescaled_categories": len(existing),
		}); err != nil {
			return err
		}
		created = &cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCategory merges the set fields of in into the category. A changed
// token amount triggers a sibling redistribution in the same transaction;
// other fields merge without touching siblings.
func (s *Service) UpdateCategory(ctx context.Context, allocationID, issuerID uuid.UUID, in UpdateCategoryInput) (*domain.AllocationCategory, error) {
	current, err := s.findOwned(ctx, allocationID, issuerID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockAsset(current.AssetID)
	defer unlock()

	// Supply is resolved before the transaction opens, like CreateCategory and
	// DeleteCategory: the collaborator read must not ride a second connection
	// while the transaction pins the first.
	supply, _, err := s.Assets.TokenSupplyAndOwner(ctx, current.AssetID)
	if err != nil {
		return nil, err
	}

	var updated *domain.AllocationCategory
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alloc domain.AllocationCategory
		if err := tx.Where("allocation_id = ? AND issuer_id = ?", allocationID, issuerID).First(&alloc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Allocation category not found")
			}
			return err
		}

		var siblings []domain.AllocationCategory
		if err := tx.Where("asset_id = ? AND allocation_id <> ?", alloc.AssetID, alloc.AllocationID).Find(&siblings).Error; err != nil {
			return err
		}

		if in.Category != nil && *in.Category != "" && *in.Category != alloc.Category {
			if err := guardUniqueName(siblings, *in.Category, alloc.AllocationID); err != nil {
				return err
			}
			alloc.Category = *in.Category
		}

		oldTokens := alloc.Tokens
		if in.Tokens != nil && *in.Tokens != oldTokens {
			if err := guardPositiveTokens(*in.Tokens); err != nil {
				return err
			}
			if err := guardSupplyDefined(supply); err != nil {
				return err
			}
			if err := guardFloorRoom(supply, *in.Tokens, len(siblings)); err != nil {
				return err
			}

			rescaled := redistributeForUpdate(supply, snapshotOf(siblings), oldTokens, *in.Tokens)
			for i := range siblings {
				siblings[i].Tokens = rescaled[siblings[i].AllocationID]
				siblings[i].Percentage = roundPercentage(siblings[i].Tokens, supply)
				if err := tx.Save(&siblings[i]).Error; err != nil {
					return err
				}
			}
			alloc.Tokens = *in.Tokens
			alloc.Percentage = roundPercentage(alloc.Tokens, supply)
		}

		if in.Description != nil {
			alloc.Description = in.Description
		}
		if in.VestingType != nil {
			alloc.VestingType = *in.VestingType
		}
		if in.VestingStartDate != nil {
			alloc.VestingStartDate = in.VestingStartDate
		}
		if in.VestingEndDate != nil {
			alloc.VestingEndDate = in.VestingEndDate
		}
		if in.CliffPeriod != nil {
			alloc.CliffPeriod = in.CliffPeriod
		}
		if in.IsActive != nil {
			alloc.IsActive = *in.IsActive
		}
		if err := guardVesting(alloc.VestingType, alloc.VestingStartDate, alloc.VestingEndDate, alloc.CliffPeriod); err != nil {
			return err
		}

		if err := tx.Save(&alloc).Error; err != nil {
			return err
		}
		if err := writeEvent(tx, alloc.AssetID, alloc.AllocationID, issuerID, "UPDATED", map[string]interface{}{
			"category":         alloc.Category,
			"tokens":           alloc.Tokens,
			"token_difference": alloc.Tokens - oldTokens,
		}); err != nil {
			return err
		}
		updated = &alloc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes the category without redistributing its tokens: the
// freed tokens stay unassigned until a follow-up update, and the returned
// stats report the imbalance (is_valid false, non-zero remaining_tokens).
// Deleting the asset's only category is refused.
func (s *Service) DeleteCategory(ctx context.Context, allocationID, issuerID uuid.UUID) (*DeleteResult, error) {
	current, err := s.findOwned(ctx, allocationID, issuerID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockAsset(current.AssetID)
	defer unlock()

	supply, _, err := s.Assets.TokenSupplyAndOwner(ctx, current.AssetID)
	if err != nil {
		return nil, err
	}

	var result *DeleteResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alloc domain.AllocationCategory
		if err := tx.Where("allocation_id = ? AND issuer_id = ?", allocationID, issuerID).First(&alloc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("Allocation category not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&domain.AllocationCategory{}).Where("asset_id = ?", alloc.AssetID).Count(&count).Error; err != nil {
			return err
		}
		if err := guardLastCategory(count); err != nil {
			return err
		}

		if err := tx.Delete(&alloc).Error; err != nil {
			return err
		}
		if err := writeEvent(tx, alloc.AssetID, alloc.AllocationID, issuerID, "DELETED", map[string]interface{}{
			"category":     alloc.Category,
			"tokens_freed": alloc.Tokens,
		}); err != nil {
			return err
		}

		var remaining []domain.AllocationCategory
		if err := tx.Where("asset_id = ?", alloc.AssetID).Order("percentage DESC").Find(&remaining).Error; err != nil {
			return err
		}
		result = &DeleteResult{
			DeletedAllocation: alloc,
			Stats:             statsOver(remaining, supply),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetStats is a pure read of the asset's allocation totals, categories sorted
// by percentage descending.
func (s *Service) GetStats(ctx context.Context, assetID, issuerID uuid.UUID) (*Stats, error) {
	supply, owner, err := s.Assets.TokenSupplyAndOwner(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if owner != issuerID {
		return nil, apperror.NotFound("Asset not found")
	}

	var categories []domain.AllocationCategory
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).Order("percentage DESC").Find(&categories).Error; err != nil {
		return nil, err
	}
	stats := statsOver(categories, supply)
	return &stats, nil
}

// ListEvents returns the audit trail for one asset, oldest first.
func (s *Service) ListEvents(ctx context.Context, assetID, issuerID uuid.UUID) ([]domain.AllocationEvent, error) {
	_, owner, err := s.Assets.TokenSupplyAndOwner(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if owner != issuerID {
		return nil, apperror.NotFound("Asset not found")
	}
	var events []domain.AllocationEvent
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).Order(`"createdAt" ASC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Service) findOwned(ctx context.Context, allocationID, issuerID uuid.UUID) (*domain.AllocationCategory, error) {
	var alloc domain.AllocationCategory
	if err := s.DB.WithContext(ctx).Where("allocation_id = ? AND issuer_id = ?", allocationID, issuerID).First(&alloc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Allocation category not found")
		}
		return nil, err
	}
	return &alloc, nil
}

func snapshotOf(categories []domain.AllocationCategory) []CategoryTokens {
	snapshot := make([]CategoryTokens, len(categories))
	for i, cat := range categories {
		snapshot[i] = CategoryTokens{AllocationID: cat.AllocationID, Tokens: cat.Tokens}
	}
	return snapshot
}

func statsOver(categories []domain.AllocationCategory, supply int64) Stats {
	var total int64
	for _, cat := range categories {
		total += cat.Tokens
	}
	return Stats{
		TotalTokens:         total,
		TotalPercentage:     roundPercentage(total, supply),
		RemainingTokens:     supply - total,
		RemainingPercentage: roundPercentage(supply-total, supply),
		IsValid:             total == supply,
		Categories:          categories,
	}
}

func writeEvent(tx *gorm.DB, assetID, allocationID, actorIssuerID uuid.UUID, eventType string, payload map[string]interface{}) error {
	b, _ := json.Marshal(payload)
	return tx.Create(&domain.AllocationEvent{
		AssetID:       assetID,
		AllocationID:  allocationID,
		ActorIssuerID: actorIssuerID,
		EventType:     eventType,
		EventData:     datatypes.JSON(b),
	}).Error
}
