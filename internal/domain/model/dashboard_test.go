package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func order(status string, fields map[string]any) Entity {
	f := map[string]any{OrderFieldStatus: status}
	for k, v := range fields {
		f[k] = v
	}
	return Entity{ID: status, Fields: f}
}

func TestSummarizeOrders(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	orders := []Entity{
		order(OrderStatusPending, map[string]any{"amount": 10.0, "createdAt": "2024-03-15T09:00:00Z"}),
		order(OrderStatusPending, map[string]any{"total": "5.5", "createdAt": "2024-03-02T09:00:00Z"}),
		order(OrderStatusProcessing, map[string]any{"amount": 100.0, "createdAt": "2024-02-28T09:00:00Z"}),
		order(OrderStatusDelivered, map[string]any{"amount": 1.0, "createdAt": "yesterday"}),
		order(OrderStatusCancel, nil),
		order("Refunded", map[string]any{"amount": "n/a"}),
	}

	s := SummarizeOrders(orders, now)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.Processing)
	assert.Equal(t, 1, s.Delivered)
	assert.Equal(t, 1, s.Cancelled)
	assert.InDelta(t, 116.5, s.TotalRevenue, 0.001)
	assert.InDelta(t, 15.5, s.MonthRevenue, 0.001)
	assert.InDelta(t, 10, s.TodayRevenue, 0.001)
}

func TestSummarizeOrders_Empty(t *testing.T) {
	assert.Equal(t, OrderSummary{}, SummarizeOrders(nil, time.Now()))
}
