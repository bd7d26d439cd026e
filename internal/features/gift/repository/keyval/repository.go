package keyval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/keyspace"
	"giftwise-backend/internal/features/gift/models"
	"giftwise-backend/internal/features/gift/repository"
	"giftwise-backend/internal/platform/keyval"
)

type giftRepository struct {
	store keyval.Store
}

func NewGiftRepository(store keyval.Store) repository.GiftRepository {
	return &giftRepository{store: store}
}

func giftKey(listID, giftID string) keyval.Key {
	return keyval.Key{
		Partition: keyspace.ListPartition(listID),
		Sort:      keyspace.GiftSort(giftID),
	}
}

func giftIndexes(gift *models.Gift) []keyval.IndexEntry {
	return []keyval.IndexEntry{
		{Index: keyspace.GiftIndex(gift.ID), Range: keyspace.ListPartition(gift.ListID)},
	}
}

func giftRecord(gift *models.Gift) (keyval.Record, error) {
	value, err := json.Marshal(gift)
	if err != nil {
		return keyval.Record{}, fmt.Errorf("marshal gift %s: %w", gift.ID, err)
	}
	return keyval.Record{
		Key:     giftKey(gift.ListID, gift.ID),
		Value:   value,
		Indexes: giftIndexes(gift),
	}, nil
}

func decodeGift(rec keyval.Record) (*models.Gift, error) {
	var gift models.Gift
	if err := json.Unmarshal(rec.Value, &gift); err != nil {
		return nil, fmt.Errorf("decode gift record %s: %w", rec.Key, err)
	}
	return &gift, nil
}

// listOwner reads only the owner of a list's metadata record. The gift
// repository shares the partition with the list repository but does not
// depend on it.
func (r *giftRepository) listOwner(ctx context.Context, listID string) (string, error) {
	rec, err := r.store.Get(ctx, keyval.Key{
		Partition: keyspace.ListPartition(listID),
		Sort:      keyspace.ListMetadataSort,
	})
	if errors.Is(err, keyval.ErrRecordNotFound) {
		return "", apperrors.NotFound("list not found")
	}
	if err != nil {
		return "", apperrors.Infrastructure("failed to load list", err)
	}
	var meta struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(rec.Value, &meta); err != nil {
		return "", apperrors.Infrastructure("failed to load list", err)
	}
	return meta.OwnerID, nil
}

func (r *giftRepository) requireOwner(ctx context.Context, listID, callerID string) error {
	ownerID, err := r.listOwner(ctx, listID)
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return apperrors.Forbidden("only the list owner may manage gifts")
	}
	return nil
}

func (r *giftRepository) Create(ctx context.Context, listID, callerID string, input models.GiftCreate) (*models.Gift, error) {
	if err := r.requireOwner(ctx, listID, callerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gift := &models.Gift{
		ID:          uuid.New().String(),
		ListID:      listID,
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		SortOrder:   input.SortOrder,
		Status:      models.GiftStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	rec, err := giftRecord(gift)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to create gift", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, apperrors.Infrastructure("failed to create gift", err)
	}
	return gift, nil
}

func (r *giftRepository) GetByList(ctx context.Context, listID string) ([]*models.Gift, error) {
	records, err := r.store.QueryPrefix(ctx, keyspace.ListPartition(listID))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load gifts", err)
	}

	gifts := make([]*models.Gift, 0, len(records))
	for _, rec := range records {
		if _, ok := keyspace.GiftIDFromSort(rec.Key.Sort); !ok {
			continue
		}
		gift, err := decodeGift(rec)
		if err != nil {
			return nil, apperrors.Infrastructure("failed to load gifts", err)
		}
		gifts = append(gifts, gift)
	}

	sort.SliceStable(gifts, func(i, j int) bool {
		if gifts[i].SortOrder != gifts[j].SortOrder {
			return gifts[i].SortOrder < gifts[j].SortOrder
		}
		return gifts[i].CreatedAt.Before(gifts[j].CreatedAt)
	})
	return gifts, nil
}

func (r *giftRepository) GetByID(ctx context.Context, giftID string) (*models.Gift, error) {
	if giftID == "" {
		return nil, apperrors.NotFound("gift not found")
	}
	records, err := r.store.QueryIndex(ctx, keyspace.GiftIndex(giftID))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load gift", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NotFound("gift not found")
	}
	gift, err := decodeGift(records[0])
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load gift", err)
	}
	return gift, nil
}

func (r *giftRepository) Update(ctx context.Context, giftID, callerID string, update models.GiftUpdate) (*models.Gift, error) {
	gift, err := r.GetByID(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if err := r.requireOwner(ctx, gift.ListID, callerID); err != nil {
		return nil, err
	}

	if update.Title != nil {
		gift.Title = *update.Title
	}
	if update.Description != nil {
		gift.Description = *update.Description
	}
	if update.URL != nil {
		gift.URL = *update.URL
	}
	if update.SortOrder != nil {
		gift.SortOrder = *update.SortOrder
	}
	gift.UpdatedAt = time.Now().UTC()

	rec, err := giftRecord(gift)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to update gift", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, apperrors.Infrastructure("failed to update gift", err)
	}
	return gift, nil
}

func (r *giftRepository) Delete(ctx context.Context, giftID, callerID string) error {
	gift, err := r.GetByID(ctx, giftID)
	if err != nil {
		return err
	}
	if err := r.requireOwner(ctx, gift.ListID, callerID); err != nil {
		return err
	}

	rec := keyval.Record{
		Key:     giftKey(gift.ListID, gift.ID),
		Indexes: giftIndexes(gift),
	}
	if err := r.store.DeleteRecords(ctx, []keyval.Record{rec}); err != nil {
		return apperrors.Infrastructure("failed to delete gift", err)
	}
	return nil
}

func (r *giftRepository) Claim(ctx context.Context, giftID, claimedBy, claimerMessage string) (*models.Gift, error) {
	gift, err := r.GetByID(ctx, giftID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// Only the claim fields travel in the write; the store checks
	// status == available and merges them in one atomic step. An owner
	// edit landing between the read above and this write is never
	// reverted, and losing the race is reported as a condition failure,
	// never as a partial write.
	err = r.store.UpdateWithCondition(ctx,
		giftKey(gift.ListID, gift.ID),
		models.StatusField, string(models.GiftStatusAvailable),
		map[string]interface{}{
			models.StatusField:         string(models.GiftStatusClaimed),
			models.ClaimedByField:      claimedBy,
			models.ClaimerMessageField: claimerMessage,
			models.ClaimedAtField:      now.Format(time.RFC3339Nano),
			models.UpdatedAtField:      now.Format(time.RFC3339Nano),
		})
	if errors.Is(err, keyval.ErrConditionFailed) {
		return nil, apperrors.AlreadyClaimed("gift has already been claimed")
	}
	if errors.Is(err, keyval.ErrRecordNotFound) {
		return nil, apperrors.NotFound("gift not found")
	}
	if err != nil {
		return nil, apperrors.Infrastructure("failed to claim gift", err)
	}
	return r.GetByID(ctx, gift.ID)
}

func (r *giftRepository) Unclaim(ctx context.Context, giftID, callerID string) (*models.Gift, error) {
	gift, err := r.GetByID(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if err := r.requireOwner(ctx, gift.ListID, callerID); err != nil {
		return nil, err
	}

	gift.Status = models.GiftStatusAvailable
	gift.ClaimedBy = ""
	gift.ClaimerMessage = ""
	gift.ClaimedAt = nil
	gift.UpdatedAt = time.Now().UTC()

	rec, err := giftRecord(gift)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to unclaim gift", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, apperrors.Infrastructure("failed to unclaim gift", err)
	}
	return gift, nil
}
