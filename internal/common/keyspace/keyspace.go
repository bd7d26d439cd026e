// Package keyspace defines the key-encoding convention shared by the list
// and gift repositories. A list and all of its gifts live under one
// partition, so the whole group can be fetched with a single prefix query
// and removed with a single grouped delete. Three index families cover the
// remaining access paths: owner -> lists, share code -> list, gift id ->
// gift, none of which require a scan.
package keyspace

import (
	"fmt"
	"strings"
	"time"
)

const (
	ListPartitionPrefix = "LIST#"
	GiftSortPrefix      = "GIFT#"
	ListMetadataSort    = "METADATA"

	OwnerIndexPrefix = "OWNER#"
	ShareIndexPrefix = "SHARE#"
	GiftIndexPrefix  = "GIFT#"

	createdRangePrefix = "CREATED#"
)

// ListPartition returns the partition key holding a list and its gifts.
func ListPartition(listID string) string {
	return ListPartitionPrefix + listID
}

// GiftSort returns the sort key of a gift record inside its list partition.
func GiftSort(giftID string) string {
	return GiftSortPrefix + giftID
}

// OwnerIndex returns the index key listing every list of one owner.
func OwnerIndex(ownerID string) string {
	return OwnerIndexPrefix + ownerID
}

// ShareIndex returns the index key resolving a public share code.
func ShareIndex(shareCode string) string {
	return ShareIndexPrefix + shareCode
}

// GiftIndex returns the index key resolving a gift without knowing its list.
func GiftIndex(giftID string) string {
	return GiftIndexPrefix + giftID
}

// CreatedRange encodes a creation timestamp as a fixed-width range key so
// that lexicographic order equals chronological order.
func CreatedRange(t time.Time) string {
	return fmt.Sprintf("%s%020d", createdRangePrefix, t.UnixNano())
}

// GiftIDFromSort extracts the gift id from a gift sort key. The second
// return is false for non-gift sort keys such as METADATA.
func GiftIDFromSort(sort string) (string, bool) {
	if !strings.HasPrefix(sort, GiftSortPrefix) {
		return "", false
	}
	return strings.TrimPrefix(sort, GiftSortPrefix), true
}

// ListIDFromPartition extracts the list id from a partition key.
func ListIDFromPartition(partition string) (string, bool) {
	if !strings.HasPrefix(partition, ListPartitionPrefix) {
		return "", false
	}
	return strings.TrimPrefix(partition, ListPartitionPrefix), true
}
