package keyval

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Name   string `json:"name"`
}

func encode(t *testing.T, e testEntity) []byte {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return data
}

func TestGetMissingRecord(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), Key{Partition: "P", Sort: "S"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPutAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	key := Key{Partition: "LIST#1", Sort: "METADATA"}
	value := encode(t, testEntity{ID: "1", Status: "available"})
	require.NoError(t, store.Put(ctx, Record{Key: key, Value: value}))

	rec, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, rec.Key)
	assert.JSONEq(t, string(value), string(rec.Value))
}

func TestUpdateWithConditionMergesFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{Partition: "LIST#1", Sort: "GIFT#1"}

	require.NoError(t, store.Put(ctx, Record{
		Key:   key,
		Value: encode(t, testEntity{ID: "1", Status: "available", Name: "book"}),
	}))

	err := store.UpdateWithCondition(ctx, key, "status", "available",
		map[string]interface{}{"status": "claimed"})
	require.NoError(t, err)

	rec, err := store.Get(ctx, key)
	require.NoError(t, err)
	var e testEntity
	require.NoError(t, json.Unmarshal(rec.Value, &e))
	assert.Equal(t, "claimed", e.Status)
	// Fields outside the merge keep their stored values.
	assert.Equal(t, "1", e.ID)
	assert.Equal(t, "book", e.Name)

	// Second attempt fails: the guarded field no longer matches.
	err = store.UpdateWithCondition(ctx, key, "status", "available",
		map[string]interface{}{"status": "claimed"})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestUpdateWithConditionMissingRecord(t *testing.T) {
	store := NewMemoryStore()

	err := store.UpdateWithCondition(context.Background(),
		Key{Partition: "LIST#1", Sort: "GIFT#404"},
		"status", "available", map[string]interface{}{"status": "claimed"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateWithConditionExactlyOneWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{Partition: "LIST#1", Sort: "GIFT#1"}

	require.NoError(t, store.Put(ctx, Record{
		Key:   key,
		Value: encode(t, testEntity{ID: "1", Status: "available"}),
	}))

	const attempts = 64
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- store.UpdateWithCondition(ctx, key, "status", "available",
				map[string]interface{}{
					"status": "claimed",
					"name":   fmt.Sprintf("claimer-%d", i),
				})
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrConditionFailed):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestQueryPrefixReturnsWholePartition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Record{
		Key:   Key{Partition: "LIST#1", Sort: "METADATA"},
		Value: encode(t, testEntity{ID: "1"}),
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, Record{
			Key:   Key{Partition: "LIST#1", Sort: fmt.Sprintf("GIFT#%d", i)},
			Value: encode(t, testEntity{ID: fmt.Sprintf("g%d", i)}),
		}))
	}
	require.NoError(t, store.Put(ctx, Record{
		Key:   Key{Partition: "LIST#2", Sort: "METADATA"},
		Value: encode(t, testEntity{ID: "2"}),
	}))

	records, err := store.QueryPrefix(ctx, "LIST#1")
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestQueryIndexOrdersByRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		require.NoError(t, store.Put(ctx, Record{
			Key:   Key{Partition: fmt.Sprintf("LIST#%d", i), Sort: "METADATA"},
			Value: encode(t, testEntity{ID: fmt.Sprintf("%d", i)}),
			Indexes: []IndexEntry{
				{Index: "OWNER#u1", Range: fmt.Sprintf("CREATED#%020d", i)},
			},
		}))
	}

	records, err := store.QueryIndex(ctx, "OWNER#u1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		var e testEntity
		require.NoError(t, json.Unmarshal(rec.Value, &e))
		assert.Equal(t, fmt.Sprintf("%d", i), e.ID)
	}
}

func TestQueryIndexUnknownKeyIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	records, err := store.QueryIndex(context.Background(), "SHARE#nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteRecordsIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := Record{
		Key:   Key{Partition: "LIST#1", Sort: "METADATA"},
		Value: encode(t, testEntity{ID: "1"}),
		Indexes: []IndexEntry{
			{Index: "SHARE#code"},
		},
	}
	require.NoError(t, store.Put(ctx, rec))

	require.NoError(t, store.DeleteRecords(ctx, []Record{rec}))
	_, err := store.Get(ctx, rec.Key)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	records, err := store.QueryIndex(ctx, "SHARE#code")
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting again is a no-op, not an error.
	require.NoError(t, store.DeleteRecords(ctx, []Record{rec}))
}

func TestDeleteRecordsChunksLargeBatches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	recs := make([]Record, 0, BatchDeleteSize*2+3)
	for i := 0; i < cap(recs); i++ {
		rec := Record{
			Key:   Key{Partition: "LIST#big", Sort: fmt.Sprintf("GIFT#%03d", i)},
			Value: encode(t, testEntity{ID: fmt.Sprintf("g%d", i)}),
		}
		require.NoError(t, store.Put(ctx, rec))
		recs = append(recs, rec)
	}

	require.NoError(t, store.DeleteRecords(ctx, recs))

	records, err := store.QueryPrefix(ctx, "LIST#big")
	require.NoError(t, err)
	assert.Empty(t, records)
}
