package store

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
)

// Stats is the admin dashboard aggregate, all-time, read-only.
type Stats struct {
	TotalUsers        int64           `json:"total_users"`
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue float64         `json:"average_order_value"`
	MedianOrderValue  float64         `json:"median_order_value"`
}

type StatsStore struct {
	db *gorm.DB
}

func NewStatsStore(db *gorm.DB) *StatsStore {
	return &StatsStore{db: db}
}

// GetStats computes user count, order count, revenue sum, and order
// value distribution figures.
func (s *StatsStore) GetStats(ctx context.Context) (*Stats, error) {
	result := &Stats{TotalRevenue: decimal.Zero}

	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&result.TotalUsers).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).Count(&result.TotalOrders).Error; err != nil {
		return nil, errors.Wrap(err, "count orders")
	}

	if result.TotalOrders == 0 {
		return result, nil
	}

	var totals []decimal.Decimal
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).Pluck("total", &totals).Error; err != nil {
		return nil, errors.Wrap(err, "query order totals")
	}

	values := make([]float64, 0, len(totals))
	for _, t := range totals {
		result.TotalRevenue = result.TotalRevenue.Add(t)
		v, _ := t.Float64()
		values = append(values, v)
	}

	if avg, err := stats.Mean(values); err == nil {
		result.AverageOrderValue = avg
	}
	if med, err := stats.Median(values); err == nil {
		result.MedianOrderValue = med
	}
	return result, nil
}
