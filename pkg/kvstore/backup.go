package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

const backupSuffix = ".backup"

// SetWithBackup snapshots the current value under <key>.backup before
// writing, and restores the snapshot if the write fails. Used for the large
// catalog payload, where the storage quota is most likely to be hit.
func SetWithBackup(ctx context.Context, s Store, key string, value any) error {
	var prev json.RawMessage
	hadPrev := true
	if err := s.Get(ctx, key, &prev); err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			return err
		}
		hadPrev = false
	}

	if hadPrev {
		if err := s.Set(ctx, key+backupSuffix, prev); err != nil {
			return err
		}
	}

	if err := s.Set(ctx, key, value); err != nil {
		if hadPrev {
			// Best effort; the original value is normally still in place
			// because single-key writes are atomic.
			_ = s.Set(ctx, key, prev)
		}
		return err
	}
	return nil
}
