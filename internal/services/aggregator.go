package services

import (
	"sort"
	"time"

	"affilink/internal/models"
)

// NoTopProduct is reported when no product has any clicks.
const NoTopProduct = "None"

// DaysInChart is the number of calendar days covered by Summary.Daily.
const DaysInChart = 7

type ProductStat struct {
	ProductID uint       `json:"product_id"`
	Name      string     `json:"name"`
	Total     int        `json:"total"`
	Today     int        `json:"today"`
	LastClick *time.Time `json:"last_click"`
}

type TopProduct struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type Summary struct {
	TotalClicks int           `json:"total_clicks"`
	ClicksToday int           `json:"clicks_today"`
	ClicksWeek  int           `json:"clicks_week"`
	TopProduct  TopProduct    `json:"top_product"`
	PerProduct  []ProductStat `json:"per_product"`
	Daily       []DayCount    `json:"daily"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Aggregate computes dashboard metrics from full product and click snapshots.
// Day boundaries are taken in now's location. Input order of clicks does not
// matter; input order of products decides ties.
func Aggregate(products []models.Product, clicks []models.Click, now time.Time) Summary {
	todayStart := StartOfDay(now)
	weekStart := StartOfDay(now.AddDate(0, 0, -7))
	chartStart := StartOfDay(now.AddDate(0, 0, -(DaysInChart - 1)))
	chartEnd := StartOfDay(now.AddDate(0, 0, 1))

	stats := make([]ProductStat, len(products))
	byID := make(map[uint]*ProductStat, len(products))
	for i, p := range products {
		stats[i] = ProductStat{ProductID: p.ID, Name: p.Name}
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = &stats[i]
		}
	}

	daily := make([]DayCount, DaysInChart)
	for i := range daily {
		daily[i].Day = StartOfDay(chartStart.AddDate(0, 0, i))
	}

	summary := Summary{TotalClicks: len(clicks)}
	for _, c := range clicks {
		at := c.CreatedAt
		isToday := !at.Before(todayStart)
		if isToday {
			summary.ClicksToday++
		}
		if !at.Before(weekStart) {
			summary.ClicksWeek++
		}
		if idx := dayIndex(daily, chartEnd, at); idx >= 0 {
			daily[idx].Count++
		}

		if c.ProductID == nil {
			continue
		}
		st, ok := byID[*c.ProductID]
		if !ok {
			continue
		}
		st.Total++
		if isToday {
			st.Today++
		}
		if st.LastClick == nil || at.After(*st.LastClick) {
			last := at
			st.LastClick = &last
		}
	}

	summary.TopProduct = TopProduct{Name: NoTopProduct}
	for _, st := range stats {
		if st.Total > summary.TopProduct.Total {
			summary.TopProduct = TopProduct{Name: st.Name, Total: st.Total}
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})
	summary.PerProduct = stats
	summary.Daily = daily

	return summary
}

// dayIndex finds the chart bucket holding t, or -1 when t falls outside
// [days[0].Day, end).
func dayIndex(days []DayCount, end time.Time, t time.Time) int {
	if len(days) == 0 || t.Before(days[0].Day) || !t.Before(end) {
		return -1
	}
	for i := len(days) - 1; i >= 0; i-- {
		if !t.Before(days[i].Day) {
			return i
		}
	}
	return -1
}
