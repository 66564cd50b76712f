package purchase

import (
	"context"
	"fmt"

	"purchases-api/domain"
	"purchases-api/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type (
	PurchaseRepository interface {
		GetPurchasesByUser(ctx context.Context, userID int64) ([]*entities.Purchase, error)
		ApplyChanges(ctx context.Context, userID int64, changes domain.Changes) error
		GetCategorySummary(ctx context.Context, userID int64) ([]domain.CategorySummary, error)
	}

	purchaseRepository struct {
		db *gorm.DB
	}

	categoryTotal struct {
		Category string
		Total    decimal.Decimal
		Count    int64
	}
)

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) GetPurchasesByUser(ctx context.Context, userID int64) ([]*entities.Purchase, error) {
	var purchases []*entities.Purchase
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ts asc").
		Order("id asc").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// ApplyChanges writes deletes, updates and inserts in one transaction. Every
// statement is scoped to userID; an update that matches no row aborts the
// whole transaction.
func (r *purchaseRepository) ApplyChanges(ctx context.Context, userID int64, changes domain.Changes) error {
	if changes.IsEmpty() {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes.Deletes) > 0 {
			if err := tx.Where("user_id = ? AND id IN ?", userID, changes.Deletes).
				Delete(&entities.Purchase{}).Error; err != nil {
				return fmt.Errorf("delete purchases: %w", err)
			}
		}

		for _, p := range changes.Updates {
			res := tx.Model(&entities.Purchase{}).
				Where("id = ? AND user_id = ?", p.ID, userID).
				Updates(map[string]interface{}{
					"category":    p.Category,
					"subcategory": p.Subcategory,
					"price":       p.Price,
					"ts":          p.Timestamp,
				})
			if res.Error != nil {
				return fmt.Errorf("update purchase %d: %w", p.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update purchase %d: %w", p.ID, domain.ErrStaleSnapshot)
			}
		}

		if len(changes.Inserts) > 0 {
			rows := make([]*entities.Purchase, 0, len(changes.Inserts))
			for _, p := range changes.Inserts {
				rows = append(rows, &entities.Purchase{
					Category:    p.Category,
					Subcategory: p.Subcategory,
					Price:       p.Price,
					Timestamp:   p.Timestamp,
					UserID:      userID,
				})
			}
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert purchases: %w", err)
			}
		}

		return nil
	})
}

func (r *purchaseRepository) GetCategorySummary(ctx context.Context, userID int64) ([]domain.CategorySummary, error) {
	var totals []categoryTotal
	if err := r.db.WithContext(ctx).
		Model(&entities.Purchase{}).
		Select("category, COALESCE(SUM(price), 0) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category").
		Order("category asc").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	summary := make([]domain.CategorySummary, 0, len(totals))
	for _, t := range totals {
		summary = append(summary, domain.CategorySummary{
			Category: t.Category,
			Total:    t.Total,
			Count:    t.Count,
		})
	}
	return summary, nil
}
