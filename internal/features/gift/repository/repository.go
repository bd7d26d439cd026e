package repository

import (
	"context"

	"giftwise-backend/internal/features/gift/models"
)

// GiftRepository owns the Gift lifecycle inside a list, including the
// atomic claim transition. Owner-gated operations resolve the parent list
// and fail with a Forbidden error for any other caller; Claim takes no
// identity at all.
type GiftRepository interface {
	// Create writes a new available gift into the list's partition. The
	// caller must own the list.
	Create(ctx context.Context, listID, callerID string, input models.GiftCreate) (*models.Gift, error)

	// GetByList returns the list's gifts ordered by sort order, then
	// creation time. No ownership check: redaction for public callers is
	// the service's responsibility.
	GetByList(ctx context.Context, listID string) ([]*models.Gift, error)

	// GetByID resolves a gift without knowing its parent list.
	GetByID(ctx context.Context, giftID string) (*models.Gift, error)

	// Update merges only the supplied fields and refreshes UpdatedAt. The
	// caller must own the parent list.
	Update(ctx context.Context, giftID, callerID string, update models.GiftUpdate) (*models.Gift, error)

	// Delete removes a single gift. The caller must own the parent list.
	Delete(ctx context.Context, giftID, callerID string) error

	// Claim transitions the gift available -> claimed with a single
	// conditional field merge predicated on the stored status still being
	// available. Only the claim fields are written, so a concurrent owner
	// edit of the descriptive fields is never reverted. A lost race
	// surfaces as an AlreadyClaimed error. This is the sole mechanism
	// keeping concurrent gifters from claiming the same gift; there is no
	// lock and no read-then-write check.
	Claim(ctx context.Context, giftID, claimedBy, claimerMessage string) (*models.Gift, error)

	// Unclaim clears the claim fields and resets the gift to available.
	// Owner-only; an unconditional overwrite is sufficient because the
	// owner is the single legitimate writer on this path.
	Unclaim(ctx context.Context, giftID, callerID string) (*models.Gift, error)
}
