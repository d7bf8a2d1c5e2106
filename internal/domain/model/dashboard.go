package model

import "time"

// OrderSummary aggregates the orders collection for the dashboard cards.
type OrderSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`

	TodayRevenue float64 `json:"today_revenue"`
	MonthRevenue float64 `json:"month_revenue"`
	TotalRevenue float64 `json:"total_revenue"`
}

// ResourceCount is the size of one resource collection. Error is set when the
// collection could not be fetched.
type ResourceCount struct {
	Resource string `json:"resource"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// DashboardSummary is the console landing page.
type DashboardSummary struct {
	Orders       OrderSummary    `json:"orders"`
	OrdersError  string          `json:"orders_error,omitempty"`
	Resources    []ResourceCount `json:"resources"`
	RecentOrders []Entity        `json:"recent_orders"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// Order fields read by the dashboard.
const (
	OrderFieldStatus    = "status"
	OrderFieldAmount    = "amount"
	OrderFieldTotal     = "total"
	OrderFieldCreatedAt = "createdAt"
)

// SummarizeOrders counts orders by status and sums their amounts. Amounts are
// read from "amount", falling back to "total". Orders whose creation time
// cannot be parsed only count towards TotalRevenue.
func SummarizeOrders(orders []Entity, now time.Time) OrderSummary {
	var s OrderSummary
	s.Total = len(orders)
	y, m, d := now.Date()
	for _, o := range orders {
		switch o.String(OrderFieldStatus) {
		case OrderStatusPending:
			s.Pending++
		case OrderStatusProcessing:
			s.Processing++
		case OrderStatusDelivered:
			s.Delivered++
		case OrderStatusCancel:
			s.Cancelled++
		}

		amount, ok := o.Number(OrderFieldAmount)
		if !ok {
			amount, ok = o.Number(OrderFieldTotal)
		}
		if !ok {
			continue
		}
		s.TotalRevenue += amount

		created, err := time.Parse(time.RFC3339, o.String(OrderFieldCreatedAt))
		if err != nil {
			continue
		}
		cy, cm, cd := created.In(now.Location()).Date()
		if cy == y && cm == m {
			s.MonthRevenue += amount
			if cd == d {
				s.TodayRevenue += amount
			}
		}
	}
	return s
}
