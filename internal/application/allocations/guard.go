package allocations

import (
	"time"

	"brickmark-backend/internal/domain"
	"brickmark-backend/internal/pkg/apperror"
	"brickmark-backend/internal/pkg/validation"

	"github.com/google/uuid"
)

// Stateless preconditions checked by the orchestrator before any write. Each
// returns an apperror carrying the message the API surfaces verbatim.

func guardSupplyDefined(totalSupply int64) error {
	if totalSupply <= 0 {
		return apperror.BadRequest("Asset token supply must be defined before creating allocation categories")
	}
	return nil
}

func guardPositiveTokens(tokens int64) error {
	if tokens <= 0 {
		return apperror.BadRequest("Token amount must be greater than 0")
	}
	return nil
}

// guardFloorRoom rejects a carve-out that cannot leave every sibling its floor
// of one token after rescaling.
func guardFloorRoom(totalSupply, tokens int64, siblingCount int) error {
	if tokens > totalSupply {
		return apperror.BadRequest("Token amount exceeds the asset token supply")
	}
	if totalSupply-tokens < int64(siblingCount) {
		return apperror.BadRequest("Token amount leaves no room for existing categories")
	}
	return nil
}

func guardLastCategory(categoryCount int64) error {
	if categoryCount <= 1 {
		return apperror.BadRequest("Cannot delete the last allocation category")
	}
	return nil
}

func guardUniqueName(existing []domain.AllocationCategory, name string, excludeID uuid.UUID) error {
	for _, cat := range existing {
		if cat.AllocationID != excludeID && cat.Category == name {
			return apperror.BadRequest("An allocation category with this name already exists for the asset")
		}
	}
	return nil
}

// guardVesting validates the vesting field combination: dates required together
// for any vesting type other than NO_VESTING, end strictly after start, and a
// cliff shorter than the vesting duration for cliff vesting.
func guardVesting(vestingType string, start, end *time.Time, cliffPeriod *int) error {
	if !domain.IsValidVestingType(vestingType) {
		return apperror.BadRequest("Invalid vesting type")
	}
	if vestingType == domain.NoVesting {
		return nil
	}
	if start == nil || end == nil {
		return apperror.BadRequest("Vesting start and end dates are required for the selected vesting type")
	}
	if !end.After(*start) {
		return apperror.BadRequest("Vesting end date must be after the vesting start date")
	}
	if vestingType == domain.CliffVesting {
		if cliffPeriod == nil {
			return apperror.BadRequest("Cliff period is required for cliff vesting")
		}
		if *cliffPeriod <= 0 || *cliffPeriod >= validation.VestingDurationDays(*start, *end) {
			return apperror.BadRequest("Cliff period must be shorter than the vesting duration")
		}
	}
	return nil
}
