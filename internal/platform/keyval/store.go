// Package keyval provides the durable keyed store the repositories are
// built on: partition/sort addressed records with secondary index entries,
// prefix queries, grouped deletes and a conditional single-record update.
// The store performs no domain validation; it only distinguishes "record
// missing" from "condition not met" so callers can translate both into
// domain errors.
package keyval

import (
	"context"
	"errors"
)

var (
	// ErrRecordNotFound is returned when the addressed record does not exist.
	ErrRecordNotFound = errors.New("keyval: record not found")

	// ErrConditionFailed is returned by UpdateWithCondition when the stored
	// record exists but its guarded field no longer holds the expected
	// value. This is the signal the claim path relies on.
	ErrConditionFailed = errors.New("keyval: condition failed")
)

// BatchDeleteSize bounds how many records a single grouped delete touches;
// larger deletions are chunked.
const BatchDeleteSize = 25

// Key addresses one record.
type Key struct {
	Partition string
	Sort      string
}

func (k Key) String() string {
	return k.Partition + "/" + k.Sort
}

// IndexEntry places a record into a secondary index under a range key.
// Range keys order QueryIndex results lexicographically.
type IndexEntry struct {
	Index string
	Range string
}

// Record is one stored item. Value carries the JSON-encoded entity.
// Indexes must be supplied on Put and on delete so index membership can be
// maintained; Get and the query operations do not return them.
type Record struct {
	Key     Key
	Value   []byte
	Indexes []IndexEntry
}

// Store is the capability set every backend must provide.
type Store interface {
	// Get returns the record at key or ErrRecordNotFound.
	Get(ctx context.Context, key Key) (Record, error)

	// Put writes the record unconditionally and registers its index entries.
	Put(ctx context.Context, rec Record) error

	// UpdateWithCondition sets the supplied top-level fields on the stored
	// JSON value, but only if the stored value's top-level string field
	// equals expected at write time. The check and the merge are atomic,
	// and fields not named in set keep their stored values, so a
	// concurrent writer of other fields is never reverted. Index entries
	// are left untouched. Returns ErrRecordNotFound or ErrConditionFailed
	// accordingly.
	UpdateWithCondition(ctx context.Context, key Key, field, expected string, set map[string]interface{}) error

	// QueryPrefix returns every record of a partition.
	QueryPrefix(ctx context.Context, partition string) ([]Record, error)

	// QueryIndex returns the records registered under an index key, ordered
	// by their range keys. An unknown index key yields an empty result.
	QueryIndex(ctx context.Context, index string) ([]Record, error)

	// DeleteRecords removes the given records together with their partition
	// membership and index entries, chunked at BatchDeleteSize. Deletion is
	// idempotent per key, so retrying a partially failed grouped delete is
	// safe and converges.
	DeleteRecords(ctx context.Context, recs []Record) error
}
