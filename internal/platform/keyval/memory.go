package keyval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// memoryStore is a non-durable Store for local development and tests. Every
// operation holds the mutex for its full duration, which gives the same
// single-record atomicity guarantee for UpdateWithCondition that the Lua
// script gives on Redis.
type memoryStore struct {
	mu         sync.RWMutex
	records    map[string][]byte            // record key -> value
	partitions map[string]map[string]bool   // partition -> set of sort keys
	indexes    map[string]map[string]string // index -> range|member -> record key
}

func NewMemoryStore() Store {
	return &memoryStore{
		records:    make(map[string][]byte),
		partitions: make(map[string]map[string]bool),
		indexes:    make(map[string]map[string]string),
	}
}

func (s *memoryStore) Get(_ context.Context, key Key) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[key.String()]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	value := make([]byte, len(data))
	copy(value, data)
	return Record{Key: key, Value: value}, nil
}

func (s *memoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := make([]byte, len(rec.Value))
	copy(value, rec.Value)
	s.records[rec.Key.String()] = value

	if s.partitions[rec.Key.Partition] == nil {
		s.partitions[rec.Key.Partition] = make(map[string]bool)
	}
	s.partitions[rec.Key.Partition][rec.Key.Sort] = true

	for _, entry := range rec.Indexes {
		if s.indexes[entry.Index] == nil {
			s.indexes[entry.Index] = make(map[string]string)
		}
		s.indexes[entry.Index][indexMember(entry, rec.Key)] = rec.Key.String()
	}
	return nil
}

func (s *memoryStore) UpdateWithCondition(_ context.Context, key Key, field, expected string, set map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.records[key.String()]
	if !ok {
		return ErrRecordNotFound
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("keyval conditional update %s: %w", key, err)
	}
	current, _ := fields[field].(string)
	if current != expected {
		return ErrConditionFailed
	}

	for k, v := range set {
		fields[k] = v
	}
	stored, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("keyval conditional update %s: %w", key, err)
	}
	s.records[key.String()] = stored
	return nil
}

func (s *memoryStore) QueryPrefix(_ context.Context, partition string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorts := make([]string, 0, len(s.partitions[partition]))
	for sk := range s.partitions[partition] {
		sorts = append(sorts, sk)
	}
	sort.Strings(sorts)

	records := make([]Record, 0, len(sorts))
	for _, sk := range sorts {
		key := Key{Partition: partition, Sort: sk}
		data, ok := s.records[key.String()]
		if !ok {
			continue
		}
		value := make([]byte, len(data))
		copy(value, data)
		records = append(records, Record{Key: key, Value: value})
	}
	return records, nil
}

func (s *memoryStore) QueryIndex(_ context.Context, index string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]string, 0, len(s.indexes[index]))
	for m := range s.indexes[index] {
		members = append(members, m)
	}
	sort.Strings(members)

	records := make([]Record, 0, len(members))
	for _, m := range members {
		rk := s.indexes[index][m]
		data, ok := s.records[rk]
		if !ok {
			continue
		}
		key, ok := splitRecordKey(rk)
		if !ok {
			continue
		}
		value := make([]byte, len(data))
		copy(value, data)
		records = append(records, Record{Key: key, Value: value})
	}
	return records, nil
}

func splitRecordKey(rk string) (Key, bool) {
	for i := 0; i < len(rk); i++ {
		if rk[i] == '/' {
			return Key{Partition: rk[:i], Sort: rk[i+1:]}, true
		}
	}
	return Key{}, false
}

func (s *memoryStore) DeleteRecords(_ context.Context, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		delete(s.records, rec.Key.String())
		if sorts := s.partitions[rec.Key.Partition]; sorts != nil {
			delete(sorts, rec.Key.Sort)
			if len(sorts) == 0 {
				delete(s.partitions, rec.Key.Partition)
			}
		}
		for _, entry := range rec.Indexes {
			if members := s.indexes[entry.Index]; members != nil {
				delete(members, indexMember(entry, rec.Key))
				if len(members) == 0 {
					delete(s.indexes, entry.Index)
				}
			}
		}
	}
	return nil
}
