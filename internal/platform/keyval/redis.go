package keyval

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

//go:embed conditional_update.lua
var conditionalUpdateScript string

const (
	recordKeyPrefix    = "record:"
	partitionKeyPrefix = "partition:"
	indexKeyPrefix     = "index:"
)

// redisStore implements Store on a single Redis database. Records are JSON
// values; partition membership and secondary indexes are sets. The
// conditional field merge runs as a Lua script, which Redis executes
// atomically, making it the compare-and-swap primitive the claim path
// depends on.
type redisStore struct {
	client     *redis.Client
	updateExpr *redis.Script
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{
		client:     client,
		updateExpr: redis.NewScript(conditionalUpdateScript),
	}
}

func recordKey(key Key) string {
	return recordKeyPrefix + key.String()
}

func partitionKey(partition string) string {
	return partitionKeyPrefix + partition
}

func indexKey(index string) string {
	return indexKeyPrefix + index
}

// indexMember encodes an index set member as "<range>|<partition>/<sort>".
// The range prefix carries the ordering; the suffix addresses the record.
func indexMember(entry IndexEntry, key Key) string {
	return entry.Range + "|" + key.String()
}

func recordKeyFromMember(member string) (string, bool) {
	i := strings.Index(member, "|")
	if i < 0 {
		return "", false
	}
	return recordKeyPrefix + member[i+1:], true
}

func (s *redisStore) Get(ctx context.Context, key Key) (Record, error) {
	data, err := s.client.Get(ctx, recordKey(key)).Bytes()
	if err == redis.Nil {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("keyval get %s: %w", key, err)
	}
	return Record{Key: key, Value: data}, nil
}

func (s *redisStore) Put(ctx context.Context, rec Record) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, recordKey(rec.Key), rec.Value, 0)
	pipe.SAdd(ctx, partitionKey(rec.Key.Partition), rec.Key.Sort)
	for _, entry := range rec.Indexes {
		pipe.SAdd(ctx, indexKey(entry.Index), indexMember(entry, rec.Key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("keyval put %s: %w", rec.Key, err)
	}
	return nil
}

func (s *redisStore) UpdateWithCondition(ctx context.Context, key Key, field, expected string, set map[string]interface{}) error {
	patch, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("keyval conditional update %s: %w", key, err)
	}
	res, err := s.updateExpr.Run(ctx, s.client, []string{recordKey(key)}, field, expected, string(patch)).Int64()
	if err != nil {
		return fmt.Errorf("keyval conditional update %s: %w", key, err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return ErrConditionFailed
	default:
		return ErrRecordNotFound
	}
}

func (s *redisStore) QueryPrefix(ctx context.Context, partition string) ([]Record, error) {
	sorts, err := s.client.SMembers(ctx, partitionKey(partition)).Result()
	if err != nil {
		return nil, fmt.Errorf("keyval query partition %s: %w", partition, err)
	}
	keys := make([]Key, 0, len(sorts))
	for _, sk := range sorts {
		keys = append(keys, Key{Partition: partition, Sort: sk})
	}
	return s.fetch(ctx, keys)
}

func (s *redisStore) QueryIndex(ctx context.Context, index string) ([]Record, error) {
	members, err := s.client.SMembers(ctx, indexKey(index)).Result()
	if err != nil {
		return nil, fmt.Errorf("keyval query index %s: %w", index, err)
	}
	// Range keys are fixed width, so lexicographic order is the intended one.
	sort.Strings(members)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(members))
	for _, m := range members {
		rk, ok := recordKeyFromMember(m)
		if !ok {
			continue
		}
		cmds = append(cmds, pipe.Get(ctx, rk))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("keyval query index %s: %w", index, err)
	}

	records := make([]Record, 0, len(cmds))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err == redis.Nil {
			// Stale index entry; the record was already deleted.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("keyval query index %s: %w", index, err)
		}
		key, ok := keyFromRecordKey(cmd.Args()[1].(string))
		if !ok {
			continue
		}
		records = append(records, Record{Key: key, Value: data})
	}
	return records, nil
}

func keyFromRecordKey(rk string) (Key, bool) {
	rest := strings.TrimPrefix(rk, recordKeyPrefix)
	i := strings.Index(rest, "/")
	if i < 0 {
		return Key{}, false
	}
	return Key{Partition: rest[:i], Sort: rest[i+1:]}, true
}

func (s *redisStore) fetch(ctx context.Context, keys []Key) ([]Record, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, recordKey(key))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("keyval fetch: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("keyval fetch %s: %w", keys[i], err)
		}
		records = append(records, Record{Key: keys[i], Value: data})
	}
	return records, nil
}

func (s *redisStore) DeleteRecords(ctx context.Context, recs []Record) error {
	for start := 0; start < len(recs); start += BatchDeleteSize {
		end := start + BatchDeleteSize
		if end > len(recs) {
			end = len(recs)
		}
		pipe := s.client.Pipeline()
		for _, rec := range recs[start:end] {
			pipe.Del(ctx, recordKey(rec.Key))
			pipe.SRem(ctx, partitionKey(rec.Key.Partition), rec.Key.Sort)
			for _, entry := range rec.Indexes {
				pipe.SRem(ctx, indexKey(entry.Index), indexMember(entry, rec.Key))
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("keyval delete batch: %w", err)
		}
	}
	return nil
}
