package viewmodel

import (
	"strconv"
	"time"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
)

// StatCard is one dashboard figure.
type StatCard struct {
	Label string
	Value string
	Tone  model.BadgeTone
	Href  string
	Error string
}

// RecentOrder is one row of the recent orders table.
type RecentOrder struct {
	ID     string
	Amount string
	Status string
	Tone   model.BadgeTone
	Placed string
}

// Dashboard is the template model of the landing page.
type Dashboard struct {
	Revenue      []StatCard
	Orders       []StatCard
	Resources    []StatCard
	RecentOrders []RecentOrder
	OrdersError  string
	GeneratedAt  time.Time
}

// NewDashboard maps a dashboard summary onto the template model.
func NewDashboard(s model.DashboardSummary) Dashboard {
	o := s.Orders
	d := Dashboard{
		OrdersError: s.OrdersError,
		GeneratedAt: s.GeneratedAt,
		Revenue: []StatCard{
			{Label: "Today Orders", Value: money(o.TodayRevenue)},
			{Label: "This Month", Value: money(o.MonthRevenue)},
			{Label: "Total Orders", Value: money(o.TotalRevenue)},
		},
		Orders: []StatCard{
			{Label: "Total Order", Value: strconv.Itoa(o.Total), Href: "/" + model.ResourceOrders},
			{Label: "Order Pending", Value: strconv.Itoa(o.Pending), Tone: model.ToneWarning},
			{Label: "Order Processing", Value: strconv.Itoa(o.Processing), Tone: model.ToneInfo},
			{Label: "Order Delivered", Value: strconv.Itoa(o.Delivered), Tone: model.ToneSuccess},
		},
	}

	for _, rc := range s.Resources {
		card := StatCard{Label: rc.Title, Href: "/" + rc.Resource, Error: rc.Error}
		if rc.Error == "" {
			card.Value = strconv.Itoa(rc.Count)
		} else {
			card.Value = "n/a"
			card.Tone = model.ToneDanger
		}
		d.Resources = append(d.Resources, card)
	}

	for _, e := range s.RecentOrders {
		amount, ok := e.Number(model.OrderFieldAmount)
		if !ok {
			amount, _ = e.Number(model.OrderFieldTotal)
		}
		status := e.String(model.OrderFieldStatus)
		d.RecentOrders = append(d.RecentOrders, RecentOrder{
			ID:     e.ID,
			Amount: money(amount),
			Status: status,
			Tone:   model.StatusTone(status),
			Placed: e.String(model.OrderFieldCreatedAt),
		})
	}
	return d
}

func money(v float64) string {
	return model.CurrencySymbol + " " + strconv.FormatFloat(v, 'f', 2, 64)
}
