package repository

import (
	"context"

	"giftwise-backend/internal/features/list/models"
)

// ListRepository owns the List lifecycle and the owner and share-code
// lookups. All ownership checks happen here: operations taking a callerID
// fail with a Forbidden error when the caller does not own the list.
type ListRepository interface {
	// Create writes a new list with a fresh id and share code.
	Create(ctx context.Context, ownerID, title string, hideClaimedGifts bool) (*models.List, error)

	// GetByID returns the list or a NotFound error.
	GetByID(ctx context.Context, listID string) (*models.List, error)

	// GetByOwner returns the owner's lists in creation order, each enriched
	// with gift counts. Counts are computed by fetching every list's gifts;
	// the read amplification is an accepted tradeoff over maintained
	// counters.
	GetByOwner(ctx context.Context, ownerID string) ([]*models.ListWithCounts, error)

	// GetByShareCode resolves a public share code. Unknown and malformed
	// codes are both NotFound, indistinguishably, so the endpoint cannot be
	// used as a code-guessing oracle.
	GetByShareCode(ctx context.Context, shareCode string) (*models.List, error)

	// Update merges only the supplied fields and refreshes UpdatedAt.
	Update(ctx context.Context, listID, callerID string, update models.ListUpdate) (*models.List, error)

	// Delete removes the list and every gift in its partition with grouped
	// deletes. Not atomic as a whole: a crash mid-batch can leave orphaned
	// gift records, and re-invoking Delete for the same id is safe and
	// converges to full deletion.
	Delete(ctx context.Context, listID, callerID string) error
}
