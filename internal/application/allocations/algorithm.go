package allocations

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// CategoryTokens is the snapshot pair the redistribution functions operate on.
type CategoryTokens struct {
	AllocationID uuid.UUID
	Tokens       int64
}

// rescaleOrder sorts a snapshot by tokens descending, allocation id ascending on
// ties. Candidate computation and remainder distribution both walk this order,
// so results do not depend on how the store returned the rows.
func rescaleOrder(categories []CategoryTokens) []CategoryTokens {
	ordered := make([]CategoryTokens, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Tokens != ordered[j].Tokens {
			return ordered[i].Tokens > ordered[j].Tokens
		}
		return ordered[i].AllocationID.String() < ordered[j].AllocationID.String()
	})
	return ordered
}

// scaleToPool shrinks (or stretches) the snapshot so its token counts sum to
// exactly pool. Every category keeps a floor of one token; the rounding
// discrepancy is distributed one token at a time in rescale order, skipping
// floor categories when subtracting.
func scaleToPool(categories []CategoryTokens, pool int64) map[uuid.UUID]int64 {
	ordered := rescaleOrder(categories)

	var sum int64
	for _, ct := range ordered {
		sum += ct.Tokens
	}

	ratio := float64(pool) / float64(sum)
	out := make(map[uuid.UUID]int64, len(ordered))
	var candidateSum int64
	for _, ct := range ordered {
		candidate := int64(math.Floor(float64(ct.Tokens) * ratio))
		if candidate < 1 {
			candidate = 1
		}
		out[ct.AllocationID] = candidate
		candidateSum += candidate
	}

	discrepancy := pool - candidateSum
	for discrepancy > 0 {
		for _, ct := range ordered {
			if discrepancy == 0 {
				break
			}
			out[ct.AllocationID]++
			discrepancy--
		}
	}
	for discrepancy < 0 {
		progressed := false
		for _, ct := range ordered {
			if discrepancy == 0 {
				break
			}
			if out[ct.AllocationID] > 1 {
				out[ct.AllocationID]--
				discrepancy++
				progressed = true
			}
		}
		// All categories at the floor: the guard's room check makes this
		// unreachable, but never spin.
		if !progressed {
			break
		}
	}
	return out
}

// redistributeForInsert rescales every existing category so their new counts
// sum to totalSupply-newTokenAmount, making room for a category being created.
// With no existing categories there is nothing to rescale.
func redistributeForInsert(totalSupply int64, existing []CategoryTokens, newTokenAmount int64) map[uuid.UUID]int64 {
	if len(existing) == 0 {
		return map[uuid.UUID]int64{}
	}
	return scaleToPool(existing, totalSupply-newTokenAmount)
}

// redistributeForUpdate rescales the sibling categories of a category whose
// tokens change from oldTokens to newTokens. An increase shrinks the siblings
// to fit the reduced pool; a decrease hands the freed tokens back to them in
// proportion to their current share.
func redistributeForUpdate(totalSupply int64, others []CategoryTokens, oldTokens, newTokens int64) map[uuid.UUID]int64 {
	if len(others) == 0 || newTokens == oldTokens {
		return map[uuid.UUID]int64{}
	}

	if newTokens > oldTokens {
		return scaleToPool(others, totalSupply-newTokens)
	}

	additionalTokens := oldTokens - newTokens
	ordered := rescaleOrder(others)

	var sum int64
	for _, ct := range ordered {
		sum += ct.Tokens
	}

	out := make(map[uuid.UUID]int64, len(ordered))
	var added int64
	for _, ct := range ordered {
		addition := ct.Tokens * additionalTokens / sum
		out[ct.AllocationID] = ct.Tokens + addition
		added += addition
	}

	leftover := additionalTokens - added
	for leftover > 0 {
		for _, ct := range ordered {
			if leftover == 0 {
				break
			}
			out[ct.AllocationID]++
			leftover--
		}
	}
	return out
}

// roundPercentage returns tokens/totalSupply*100 rounded to 8 decimal places,
// half away from zero, on a value*1e8 fixed-point basis so binary float drift
// cannot flip the rounding direction.
func roundPercentage(tokens, totalSupply int64) float64 {
	if totalSupply == 0 {
		return 0
	}
	scaled := float64(tokens) / float64(totalSupply) * 100 * 1e8
	return math.Round(scaled) / 1e8
}
