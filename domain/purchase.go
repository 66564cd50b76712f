package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	MessageSuccessOpenSession   = "editing session opened"
	MessageSuccessGetSession    = "editing session retrieved"
	MessageSuccessSaveSession   = "changes applied successfully"
	MessageSuccessCloseSession  = "editing session closed"
	MessageSuccessGetSummary    = "purchase summary retrieved successfully"
	MessageSuccessArchiveExport = "purchases exported successfully"

	MessageFailedOpenSession   = "failed to open editing session"
	MessageFailedGetSession    = "failed to retrieve editing session"
	MessageFailedSaveSession   = "failed to apply changes"
	MessageFailedCloseSession  = "failed to close editing session"
	MessageFailedGetSummary    = "failed to retrieve purchase summary"
	MessageFailedExport        = "failed to export purchases"
	MessageFailedArchiveExport = "failed to archive purchases export"

	ErrInvalidSnapshot       = errors.New("invalid snapshot")
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrDeleteAllNotConfirmed = errors.New("saving an empty table deletes every purchase; confirmation required")
	ErrStaleSnapshot         = errors.New("purchase was changed or removed by another session")
	ErrArchiveDisabled       = fmt.Errorf("%w: export archive storage", ErrFeatureDisabled)
)

// Prices are stored as numeric(12,2).
const (
	PriceScale         = 2
	PriceIntegerDigits = 10
)

var maxPrice = decimal.New(1, PriceIntegerDigits)

// timestampLayouts are tried in order when a timestamp arrives from a client.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type (
	// Purchase is the typed record every snapshot is made of. ID is zero until
	// storage assigns one.
	Purchase struct {
		ID          int64
		UserID      int64
		Category    string
		Subcategory string
		Price       decimal.Decimal
		Timestamp   time.Time
	}

	// Changes is the outcome of reconciling two snapshots of one owner.
	Changes struct {
		Inserts []Purchase
		Deletes []int64
		Updates []Purchase
	}

	PurchaseRow struct {
		ID          int64            `json:"id" validate:"gte=0"`
		Category    string           `json:"category" validate:"required"`
		Subcategory string           `json:"subcategory" validate:"required"`
		Price       *decimal.Decimal `json:"price" validate:"required"`
		Timestamp   string           `json:"ts" validate:"required"`
	}

	SaveSnapshotRequest struct {
		Purchases        []PurchaseRow `json:"purchases" validate:"dive"`
		ConfirmDeleteAll bool          `json:"confirm_delete_all"`
	}

	PurchaseResponse struct {
		ID          int64           `json:"id"`
		Category    string          `json:"category"`
		Subcategory string          `json:"subcategory"`
		Price       decimal.Decimal `json:"price"`
		Timestamp   time.Time       `json:"ts"`
	}

	SessionResponse struct {
		SessionID string             `json:"session_id"`
		ExpiresAt time.Time          `json:"expires_at"`
		Purchases []PurchaseResponse `json:"purchases"`
	}

	SaveSummary struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
		Deleted  int `json:"deleted"`
	}

	SaveSnapshotResponse struct {
		SessionResponse
		Summary SaveSummary `json:"summary"`
	}

	CategorySummary struct {
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
		Count    int64           `json:"count"`
	}

	ArchiveExportResponse struct {
		URL  string `json:"url"`
		Rows int    `json:"rows"`
	}
)

// IsEmpty reports whether applying c would leave storage untouched.
func (c Changes) IsEmpty() bool {
	return len(c.Inserts) == 0 && len(c.Deletes) == 0 && len(c.Updates) == 0
}

// DeletesAll reports whether c removes every record of a non-empty original
// snapshot without putting anything back.
func (c Changes) DeletesAll(original []Purchase) bool {
	return len(original) > 0 && len(c.Deletes) == len(original) && len(c.Inserts) == 0
}

// SameFields compares the editable tuple of two records. Price equality is exact.
func (p Purchase) SameFields(o Purchase) bool {
	return p.Category == o.Category &&
		p.Subcategory == o.Subcategory &&
		p.Price.Equal(o.Price) &&
		p.Timestamp.Equal(o.Timestamp)
}

// CanonicalTime is the form every timestamp is held in: UTC at the
// microsecond precision the database keeps.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ValidatePrice rejects values the price column would round or overflow.
// Trailing zeros past the scale are fine: 10.500 is stored as 10.50.
func ValidatePrice(price decimal.Decimal) error {
	if !price.Equal(price.Truncate(PriceScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidPrice, price, PriceScale)
	}
	if price.Abs().GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: %s has more than %d integer digits", ErrInvalidPrice, price, PriceIntegerDigits)
	}
	return nil
}

func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return CanonicalTime(t), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

func ToPurchaseResponses(purchases []Purchase) []PurchaseResponse {
	res := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		res = append(res, PurchaseResponse{
			ID:          p.ID,
			Category:    p.Category,
			Subcategory: p.Subcategory,
			Price:       p.Price,
			Timestamp:   p.Timestamp,
		})
	}
	return res
}
