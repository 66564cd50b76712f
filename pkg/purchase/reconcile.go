package purchase

import (
	"fmt"
	"sort"
	"strings"

	"purchases-api/domain"
)

// Reconcile computes the inserts, deletes and updates that turn the stored
// original snapshot of ownerID into edited. It has no side effects.
//
// An edited record whose ID is unknown to original is inserted as a new row
// with its ID cleared, so storage assigns a fresh one.
func Reconcile(ownerID int64, original, edited []domain.Purchase) (domain.Changes, error) {
	originalByID, err := indexSnapshot(ownerID, original, "original")
	if err != nil {
		return domain.Changes{}, err
	}
	editedByID, err := indexSnapshot(ownerID, edited, "edited")
	if err != nil {
		return domain.Changes{}, err
	}

	var changes domain.Changes
	for _, rec := range edited {
		prev, known := originalByID[rec.ID]
		if rec.ID == 0 || !known {
			rec.ID = 0
			rec.UserID = ownerID
			changes.Inserts = append(changes.Inserts, rec)
			continue
		}
		if !prev.SameFields(rec) {
			rec.UserID = ownerID
			changes.Updates = append(changes.Updates, rec)
		}
	}

	for id := range originalByID {
		if _, kept := editedByID[id]; !kept {
			changes.Deletes = append(changes.Deletes, id)
		}
	}
	sort.Slice(changes.Deletes, func(i, j int) bool { return changes.Deletes[i] < changes.Deletes[j] })

	return changes, nil
}

// indexSnapshot validates every record of a snapshot and maps persisted
// records by ID.
func indexSnapshot(ownerID int64, snapshot []domain.Purchase, name string) (map[int64]domain.Purchase, error) {
	byID := make(map[int64]domain.Purchase, len(snapshot))
	for i, rec := range snapshot {
		if err := validateRecord(ownerID, rec); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", domain.ErrInvalidSnapshot, name, i, err)
		}
		if rec.ID == 0 {
			continue
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("%w: %s row %d: duplicate id %d", domain.ErrInvalidSnapshot, name, i, rec.ID)
		}
		byID[rec.ID] = rec
	}
	return byID, nil
}

func validateRecord(ownerID int64, rec domain.Purchase) error {
	switch {
	case rec.ID < 0:
		return fmt.Errorf("negative id %d", rec.ID)
	case rec.UserID != 0 && rec.UserID != ownerID:
		return fmt.Errorf("record %d belongs to user %d", rec.ID, rec.UserID)
	case strings.TrimSpace(rec.Category) == "":
		return fmt.Errorf("category is required")
	case strings.TrimSpace(rec.Subcategory) == "":
		return fmt.Errorf("subcategory is required")
	case rec.Timestamp.IsZero():
		return fmt.Errorf("timestamp is required")
	}
	return domain.ValidatePrice(rec.Price)
}
