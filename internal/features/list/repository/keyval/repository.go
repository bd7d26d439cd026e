package keyval

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "giftwise-backend/internal/common/errors"
	"giftwise-backend/internal/common/keyspace"
	"giftwise-backend/internal/features/list/models"
	"giftwise-backend/internal/features/list/repository"
	"giftwise-backend/internal/platform/keyval"
)

// shareCodeBytes is the entropy behind a share code; 16 random bytes make a
// collision practically impossible without an existence check.
const shareCodeBytes = 16

type listRepository struct {
	store keyval.Store
}

func NewListRepository(store keyval.Store) repository.ListRepository {
	return &listRepository{store: store}
}

func metadataKey(listID string) keyval.Key {
	return keyval.Key{
		Partition: keyspace.ListPartition(listID),
		Sort:      keyspace.ListMetadataSort,
	}
}

// listIndexes rebuilds the index entries of a list record. They are derived
// purely from immutable fields, so a re-Put on update re-registers the same
// set members.
func listIndexes(list *models.List) []keyval.IndexEntry {
	return []keyval.IndexEntry{
		{Index: keyspace.OwnerIndex(list.OwnerID), Range: keyspace.CreatedRange(list.CreatedAt)},
		{Index: keyspace.ShareIndex(list.ShareCode)},
	}
}

func listRecord(list *models.List) (keyval.Record, error) {
	value, err := json.Marshal(list)
	if err != nil {
		return keyval.Record{}, fmt.Errorf("marshal list %s: %w", list.ID, err)
	}
	return keyval.Record{
		Key:     metadataKey(list.ID),
		Value:   value,
		Indexes: listIndexes(list),
	}, nil
}

func decodeList(rec keyval.Record) (*models.List, error) {
	var list models.List
	if err := json.Unmarshal(rec.Value, &list); err != nil {
		return nil, fmt.Errorf("decode list record %s: %w", rec.Key, err)
	}
	return &list, nil
}

func newShareCode() (string, error) {
	buf := make([]byte, shareCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (r *listRepository) Create(ctx context.Context, ownerID, title string, hideClaimedGifts bool) (*models.List, error) {
	shareCode, err := newShareCode()
	if err != nil {
		return nil, apperrors.Infrastructure("failed to create list", err)
	}

	now := time.Now().UTC()
	list := &models.List{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Title:            title,
		HideClaimedGifts: hideClaimedGifts,
		ShareCode:        shareCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	rec, err := listRecord(list)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to create list", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, apperrors.Infrastructure("failed to create list", err)
	}
	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, listID string) (*models.List, error) {
	rec, err := r.store.Get(ctx, metadataKey(listID))
	if errors.Is(err, keyval.ErrRecordNotFound) {
		return nil, apperrors.NotFound("list not found")
	}
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load list", err)
	}
	list, err := decodeList(rec)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load list", err)
	}
	return list, nil
}

func (r *listRepository) GetByOwner(ctx context.Context, ownerID string) ([]*models.ListWithCounts, error) {
	records, err := r.store.QueryIndex(ctx, keyspace.OwnerIndex(ownerID))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load lists", err)
	}

	lists := make([]*models.ListWithCounts, 0, len(records))
	for _, rec := range records {
		list, err := decodeList(rec)
		if err != nil {
			return nil, apperrors.Infrastructure("failed to load lists", err)
		}
		giftCount, claimedCount, err := r.countGifts(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		lists = append(lists, &models.ListWithCounts{
			List:         *list,
			GiftCount:    giftCount,
			ClaimedCount: claimedCount,
		})
	}
	return lists, nil
}

// countGifts re-reads the list's partition on every owner listing. One
// query per list instead of maintained counters keeps claim and delete
// paths free of cross-record bookkeeping.
func (r *listRepository) countGifts(ctx context.Context, listID string) (int, int, error) {
	records, err := r.store.QueryPrefix(ctx, keyspace.ListPartition(listID))
	if err != nil {
		return 0, 0, apperrors.Infrastructure("failed to count gifts", err)
	}

	var giftCount, claimedCount int
	for _, rec := range records {
		if _, ok := keyspace.GiftIDFromSort(rec.Key.Sort); !ok {
			continue
		}
		giftCount++
		var status struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(rec.Value, &status); err != nil {
			return 0, 0, apperrors.Infrastructure("failed to count gifts", err)
		}
		if status.Status == "claimed" {
			claimedCount++
		}
	}
	return giftCount, claimedCount, nil
}

func (r *listRepository) GetByShareCode(ctx context.Context, shareCode string) (*models.List, error) {
	if shareCode == "" {
		return nil, apperrors.NotFound("list not found")
	}
	records, err := r.store.QueryIndex(ctx, keyspace.ShareIndex(shareCode))
	if err != nil {
		return nil, apperrors.Infrastructure("failed to resolve share code", err)
	}
	if len(records) == 0 {
		// Unknown and malformed codes are indistinguishable on purpose.
		return nil, apperrors.NotFound("list not found")
	}
	list, err := decodeList(records[0])
	if err != nil {
		return nil, apperrors.Infrastructure("failed to resolve share code", err)
	}
	return list, nil
}

func (r *listRepository) Update(ctx context.Context, listID, callerID string, update models.ListUpdate) (*models.List, error) {
	list, err := r.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != callerID {
		return nil, apperrors.Forbidden("only the list owner may modify the list")
	}

	if update.Title != nil {
		list.Title = *update.Title
	}
	if update.HideClaimedGifts != nil {
		list.HideClaimedGifts = *update.HideClaimedGifts
	}
	list.UpdatedAt = time.Now().UTC()

	rec, err := listRecord(list)
	if err != nil {
		return nil, apperrors.Infrastructure("failed to update list", err)
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, apperrors.Infrastructure("failed to update list", err)
	}
	return list, nil
}

func (r *listRepository) Delete(ctx context.Context, listID, callerID string) error {
	list, err := r.GetByID(ctx, listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return apperrors.Forbidden("only the list owner may delete the list")
	}

	records, err := r.store.QueryPrefix(ctx, keyspace.ListPartition(listID))
	if err != nil {
		return apperrors.Infrastructure("failed to delete list", err)
	}

	// Gifts go first and the metadata record last, so a crash mid-way
	// leaves the list resolvable and a retried Delete converges.
	var gifts []keyval.Record
	var meta *keyval.Record
	for _, rec := range records {
		rec := rec
		if giftID, ok := keyspace.GiftIDFromSort(rec.Key.Sort); ok {
			rec.Indexes = []keyval.IndexEntry{
				{Index: keyspace.GiftIndex(giftID), Range: keyspace.ListPartition(listID)},
			}
			gifts = append(gifts, rec)
			continue
		}
		rec.Indexes = listIndexes(list)
		meta = &rec
	}

	if err := r.store.DeleteRecords(ctx, gifts); err != nil {
		return apperrors.Infrastructure("failed to delete list gifts", err)
	}
	if meta != nil {
		if err := r.store.DeleteRecords(ctx, []keyval.Record{*meta}); err != nil {
			return apperrors.Infrastructure("failed to delete list", err)
		}
	}
	return nil
}
