package models

import "time"

// List is one gift-coordination list owned by an authenticated lister.
// ShareCode is the only public handle; it never exposes the list id.
type List struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Title            string    `json:"title"`
	HideClaimedGifts bool      `json:"hide_claimed_gifts"`
	ShareCode        string    `json:"share_code"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ListWithCounts enriches a list with gift totals for the owner dashboard.
// The counts are computed from the list's gifts at read time, so they are
// never stale.
type ListWithCounts struct {
	List
	GiftCount    int `json:"gift_count"`
	ClaimedCount int `json:"claimed_count"`
}

// ListUpdate carries a partial update; only non-nil fields are applied.
type ListUpdate struct {
	Title            *string `json:"title"`
	HideClaimedGifts *bool   `json:"hide_claimed_gifts"`
}

// IsEmpty reports whether no field was supplied.
func (u ListUpdate) IsEmpty() bool {
	return u.Title == nil && u.HideClaimedGifts == nil
}

type ListCreateRequest struct {
	Title            string `json:"title" binding:"required"`
	HideClaimedGifts bool   `json:"hide_claimed_gifts"`
}

type ListResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	HideClaimedGifts bool      `json:"hide_claimed_gifts"`
	ShareCode        string    `json:"share_code"`
	ShareURL         string    `json:"share_url"`
	GiftCount        int       `json:"gift_count,omitempty"`
	ClaimedCount     int       `json:"claimed_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
