package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// MigrationReport summarizes a legacy import: how many entries made it
// into the merged set and how many were dropped (unparseable payloads,
// invalid items, identity-key collisions).
type MigrationReport struct {
	Migrated int
	Failed   int
}

// migrateLegacyPayloads parses every legacy payload, filters the items
// through the same validity rules as Load, and merges them by identity
// key. A collision on identity drops the later item and counts it as a
// failure, never as an error: migration is strictly best-effort.
func migrateLegacyPayloads(payloads [][]byte) ([]Entry, MigrationReport, error) {
	var report MigrationReport
	var errs error

	merged := make([]Entry, 0)
	seenIdentity := make(map[string]bool)

	for i, payload := range payloads {
		items, err := parseLegacyPayload(payload)
		if err != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("legacy payload %d: %w", i, err))
			continue
		}

		for _, item := range items {
			item.Exercise = NormalizeExerciseName(item.Exercise)
			if !item.IsValid() {
				report.Failed++
				continue
			}
			if seenIdentity[item.IdentityKey()] {
				report.Failed++
				continue
			}
			seenIdentity[item.IdentityKey()] = true
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			merged = append(merged, item)
			report.Migrated++
		}
	}

	return merged, report, errs
}

// parseLegacyPayload accepts both historical shapes: a plain entry array
// and an {entries: [...]} document.
func parseLegacyPayload(payload []byte) ([]Entry, error) {
	var plain []Entry
	if err := json.Unmarshal(payload, &plain); err == nil {
		return plain, nil
	}

	var wrapped struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if wrapped.Entries == nil {
		return nil, fmt.Errorf("no entries field in legacy payload")
	}
	return wrapped.Entries, nil
}
