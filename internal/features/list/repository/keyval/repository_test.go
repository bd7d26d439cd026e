package keyval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giftwise-backend/internal/common/errors"
	giftmodels "giftwise-backend/internal/features/gift/models"
	giftkeyval "giftwise-backend/internal/features/gift/repository/keyval"
	"giftwise-backend/internal/features/list/models"
	"giftwise-backend/internal/features/list/repository"
	"giftwise-backend/internal/platform/keyval"
)

func newTestRepo(t *testing.T) (repository.ListRepository, keyval.Store) {
	t.Helper()
	store := keyval.NewMemoryStore()
	return NewListRepository(store), store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)
	assert.NotEmpty(t, list.ID)
	assert.NotEmpty(t, list.ShareCode)
	assert.Equal(t, "owner-1", list.OwnerID)
	assert.Equal(t, "Birthday", list.Title)
	assert.False(t, list.HideClaimedGifts)
	assert.Equal(t, list.CreatedAt, list.UpdatedAt)

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)
	assert.Equal(t, list.ShareCode, got.ShareCode)
}

func TestShareCodesAreUnique(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		list, err := repo.Create(ctx, "owner-1", "List", false)
		require.NoError(t, err)
		assert.False(t, seen[list.ShareCode])
		seen[list.ShareCode] = true
	}
}

func TestGetByIDUnknown(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}

func TestGetByShareCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", true)
	require.NoError(t, err)

	got, err := repo.GetByShareCode(ctx, list.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)
	assert.True(t, got.HideClaimedGifts)
}

func TestGetByShareCodeUnknownCodesLookAlike(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, code := range []string{"", "unknown", "not hex at all"} {
		_, err := repo.GetByShareCode(ctx, code)
		assert.ErrorIs(t, err, apperrors.NotFound(""), "code %q", code)
	}
}

func TestGetByOwnerOrdersByCreation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	titles := []string{"First", "Second", "Third"}
	for _, title := range titles {
		_, err := repo.Create(ctx, "owner-1", title, false)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := repo.Create(ctx, "owner-2", "Someone else's", false)
	require.NoError(t, err)

	lists, err := repo.GetByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, lists, 3)
	for i, l := range lists {
		assert.Equal(t, titles[i], l.Title)
	}
}

func TestGetByOwnerCountsGifts(t *testing.T) {
	repo, store := newTestRepo(t)
	gifts := giftkeyval.NewGiftRepository(store)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)

	var lastGiftID string
	for i := 0; i < 3; i++ {
		gift, err := gifts.Create(ctx, list.ID, "owner-1", giftmodels.GiftCreate{Title: "Gift"})
		require.NoError(t, err)
		lastGiftID = gift.ID
	}
	_, err = gifts.Claim(ctx, lastGiftID, "Aunt May", "")
	require.NoError(t, err)

	lists, err := repo.GetByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 3, lists[0].GiftCount)
	assert.Equal(t, 1, lists[0].ClaimedCount)
}

func TestGetByOwnerEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	lists, err := repo.GetByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestUpdate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, list.ID, "owner-1", models.ListUpdate{
		Title:            strPtr("Birthday 2026"),
		HideClaimedGifts: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Birthday 2026", updated.Title)
	assert.True(t, updated.HideClaimedGifts)
	assert.Equal(t, list.ShareCode, updated.ShareCode)

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Birthday 2026", got.Title)
}

func TestUpdatePartial(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", true)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, list.ID, "owner-1", models.ListUpdate{
		Title: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.HideClaimedGifts)
}

func TestUpdateByNonOwner(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)

	_, err = repo.Update(ctx, list.ID, "intruder", models.ListUpdate{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, apperrors.Forbidden(""))

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Birthday", got.Title)
}

func TestDeleteCascades(t *testing.T) {
	repo, store := newTestRepo(t)
	gifts := giftkeyval.NewGiftRepository(store)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)

	var giftID string
	for i := 0; i < 3; i++ {
		gift, err := gifts.Create(ctx, list.ID, "owner-1", giftmodels.GiftCreate{Title: "Gift"})
		require.NoError(t, err)
		giftID = gift.ID
	}

	require.NoError(t, repo.Delete(ctx, list.ID, "owner-1"))

	_, err = repo.GetByID(ctx, list.ID)
	assert.ErrorIs(t, err, apperrors.NotFound(""))

	_, err = repo.GetByShareCode(ctx, list.ShareCode)
	assert.ErrorIs(t, err, apperrors.NotFound(""))

	_, err = gifts.GetByID(ctx, giftID)
	assert.ErrorIs(t, err, apperrors.NotFound(""))

	remaining, err := gifts.GetByList(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteByNonOwner(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.Create(ctx, "owner-1", "Birthday", false)
	require.NoError(t, err)

	err = repo.Delete(ctx, list.ID, "intruder")
	assert.ErrorIs(t, err, apperrors.Forbidden(""))

	_, err = repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
}

func TestDeleteUnknownList(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Delete(context.Background(), "nope", "owner-1")
	assert.ErrorIs(t, err, apperrors.NotFound(""))
}
