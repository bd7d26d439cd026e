package models

import "time"

// GiftStatus is the claim state of a gift. The only transitions are
// available -> claimed (conditional write) and claimed -> available
// (owner unclaim).
type GiftStatus string

const (
	GiftStatusAvailable GiftStatus = "available"
	GiftStatusClaimed   GiftStatus = "claimed"
)

// Field names of the claim write. They must match the Gift json tags;
// StatusField doubles as the guarded field of the conditional merge.
const (
	StatusField         = "status"
	ClaimedByField      = "claimed_by"
	ClaimerMessageField = "claimer_message"
	ClaimedAtField      = "claimed_at"
	UpdatedAtField      = "updated_at"
)

// Gift is one coordination item belonging to exactly one list. The three
// claim fields are present iff Status is claimed; they are set together by
// Claim and cleared together by Unclaim.
type Gift struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url,omitempty"`
	SortOrder   int        `json:"sort_order"`
	Status      GiftStatus `json:"status"`

	ClaimedBy      string     `json:"claimed_by,omitempty"`
	ClaimerMessage string     `json:"claimer_message,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GiftCreate carries the owner-supplied fields of a new gift.
type GiftCreate struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url"`
	SortOrder   int    `json:"sort_order"`
}

// GiftUpdate carries a partial update; only non-nil fields are applied.
// Reordering is the same merge restricted to SortOrder.
type GiftUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	SortOrder   *int    `json:"sort_order"`
}

// IsEmpty reports whether no field was supplied.
func (u GiftUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.URL == nil && u.SortOrder == nil
}

// ClaimRequest is the public claim payload.
type ClaimRequest struct {
	ClaimedBy      string `json:"claimed_by" binding:"required"`
	ClaimerMessage string `json:"claimer_message"`
}

// PublicGift is the redacted projection served to anonymous gifters. It
// never carries claimant details or the sort order field; ordering is
// applied before projection.
type PublicGift struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url,omitempty"`
	Status      GiftStatus `json:"status"`
}

// SharedListResponse is the anonymous view of a list reached through its
// share code.
type SharedListResponse struct {
	Title            string       `json:"title"`
	HideClaimedGifts bool         `json:"hide_claimed_gifts"`
	Gifts            []PublicGift `json:"gifts"`
}
