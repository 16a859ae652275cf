package storage

import (
	"context"
	"fmt"
	"time"
)

// PostedTTL is how long a delivered listing id is remembered.
const PostedTTL = 90 * 24 * time.Hour

// IsNew reports whether the listing has not been delivered within PostedTTL.
func (s *Store) IsNew(ctx context.Context, listingID int64) (bool, error) {
	ok, err := s.kv.Exists(ctx, key("posted", listingID))
	if err != nil {
		return false, fmt.Errorf("check posted: %w", err)
	}
	return !ok, nil
}

// MarkDelivered records the listings as delivered, refreshing the TTL of ids
// already marked. It returns the number of records written.
func (s *Store) MarkDelivered(ctx context.Context, listingIDs []int64) (int, error) {
	n := 0
	for _, id := range listingIDs {
		if err := s.kv.Set(ctx, key("posted", id), "1", PostedTTL); err != nil {
			return n, fmt.Errorf("mark posted %d: %w", id, err)
		}
		n++
	}
	return n, nil
}
