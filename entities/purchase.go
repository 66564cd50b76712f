package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Category    string          `gorm:"type:text;not null" json:"category"`
	Subcategory string          `gorm:"type:text;not null" json:"subcategory"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Timestamp   time.Time       `gorm:"column:ts;not null" json:"ts"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
}

func (Purchase) TableName() string {
	return "purchases"
}
