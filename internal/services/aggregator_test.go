package services

import (
	"testing"
	"time"

	"affilink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pid(id uint) *uint { return &id }

func click(productID *uint, at time.Time) models.Click {
	return models.Click{ProductID: productID, CreatedAt: at}
}

func TestAggregate_NoClicks(t *testing.T) {
	now := time.Date(2026, 5, 14, 15, 30, 0, 0, time.UTC)
	products := []models.Product{{ID: 1, Name: "A"}}

	s := Aggregate(products, nil, now)

	assert.Equal(t, 0, s.TotalClicks)
	assert.Equal(t, 0, s.ClicksToday)
	assert.Equal(t, 0, s.ClicksWeek)
	assert.Equal(t, TopProduct{Name: NoTopProduct, Total: 0}, s.TopProduct)
	require.Len(t, s.PerProduct, 1)
	assert.Equal(t, ProductStat{ProductID: 1, Name: "A"}, s.PerProduct[0])
	assert.Nil(t, s.PerProduct[0].LastClick)
}

func TestAggregate_NoProducts(t *testing.T) {
	now := time.Date(2026, 5, 14, 15, 30, 0, 0, time.UTC)

	s := Aggregate(nil, []models.Click{click(pid(1), now)}, now)

	assert.Equal(t, 1, s.TotalClicks)
	assert.Equal(t, TopProduct{Name: NoTopProduct}, s.TopProduct)
	assert.Empty(t, s.PerProduct)
}

func TestAggregate_SameDay(t *testing.T) {
	t0 := time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)
	products := []models.Product{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	clicks := []models.Click{click(pid(1), t0), click(pid(1), t0), click(pid(2), t0)}

	s := Aggregate(products, clicks, t0)

	assert.Equal(t, 3, s.TotalClicks)
	assert.Equal(t, 3, s.ClicksToday)
	assert.Equal(t, 3, s.ClicksWeek)
	assert.Equal(t, TopProduct{Name: "A", Total: 2}, s.TopProduct)
	require.Len(t, s.PerProduct, 2)
	assert.Equal(t, "A", s.PerProduct[0].Name)
	assert.Equal(t, 2, s.PerProduct[0].Total)
	assert.Equal(t, 2, s.PerProduct[0].Today)
	assert.Equal(t, "B", s.PerProduct[1].Name)
	assert.Equal(t, 1, s.PerProduct[1].Total)
	assert.Equal(t, 1, s.PerProduct[1].Today)
}

func TestAggregate_UnknownAndNullProduct(t *testing.T) {
	now := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	products := []models.Product{{ID: 1, Name: "A"}}
	clicks := []models.Click{
		click(pid(1), now),
		click(pid(99), now),
		click(pid(99), now),
		click(nil, now),
	}

	s := Aggregate(products, clicks, now)

	assert.Equal(t, 4, s.TotalClicks)
	assert.Equal(t, 4, s.ClicksToday)
	assert.Equal(t, 4, s.ClicksWeek)
	assert.Equal(t, TopProduct{Name: "A", Total: 1}, s.TopProduct, "unknown ids never win top product")
	require.Len(t, s.PerProduct, 1)
	assert.Equal(t, 1, s.PerProduct[0].Total)

	sum := 0
	for _, st := range s.PerProduct {
		sum += st.Total
	}
	assert.Equal(t, 1, sum)
}

func TestAggregate_TimeWindows(t *testing.T) {
	now := time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC)
	products := []models.Product{{ID: 1, Name: "A"}}
	clicks := []models.Click{
		click(pid(1), time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)),  // midnight today
		click(pid(1), time.Date(2026, 5, 13, 23, 59, 59, 0, time.UTC)), // yesterday
		click(pid(1), time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC)),   // start of week window
		click(pid(1), time.Date(2026, 5, 6, 23, 59, 0, 0, time.UTC)),  // outside week
	}

	s := Aggregate(products, clicks, now)

	assert.Equal(t, 4, s.TotalClicks)
	assert.Equal(t, 1, s.ClicksToday)
	assert.Equal(t, 3, s.ClicksWeek)
	assert.Equal(t, 1, s.PerProduct[0].Today)
	assert.Equal(t, 4, s.PerProduct[0].Total)
}

func TestAggregate_LocalDayFollowsNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 5, 14, 1, 0, 0, 0, zone) // 06:00 UTC
	clicks := []models.Click{
		// 04:00 UTC is 23:00 the previous day in UTC-5.
		click(pid(1), time.Date(2026, 5, 14, 4, 0, 0, 0, time.UTC)),
		// 05:30 UTC is 00:30 today in UTC-5.
		click(pid(1), time.Date(2026, 5, 14, 5, 30, 0, 0, time.UTC)),
	}

	s := Aggregate([]models.Product{{ID: 1, Name: "A"}}, clicks, now)

	assert.Equal(t, 1, s.ClicksToday)
	assert.Equal(t, 1, s.PerProduct[0].Today)
}

func TestAggregate_LastClickIgnoresInputOrder(t *testing.T) {
	now := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	early := now.Add(-3 * time.Hour)
	late := now.Add(-1 * time.Hour)
	products := []models.Product{{ID: 1, Name: "A"}}

	asc := Aggregate(products, []models.Click{click(pid(1), early), click(pid(1), late)}, now)
	desc := Aggregate(products, []models.Click{click(pid(1), late), click(pid(1), early)}, now)

	require.NotNil(t, asc.PerProduct[0].LastClick)
	require.NotNil(t, desc.PerProduct[0].LastClick)
	assert.True(t, asc.PerProduct[0].LastClick.Equal(late))
	assert.True(t, desc.PerProduct[0].LastClick.Equal(late))
}

func TestAggregate_StableOrderingAndTies(t *testing.T) {
	now := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: 3, Name: "C"},
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 4, Name: "D"},
	}
	clicks := []models.Click{
		click(pid(2), now), click(pid(2), now),
		click(pid(1), now), click(pid(1), now),
		click(pid(4), now),
	}

	s := Aggregate(products, clicks, now)

	names := make([]string, 0, len(s.PerProduct))
	for _, st := range s.PerProduct {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"A", "B", "D", "C"}, names)
	assert.Equal(t, TopProduct{Name: "A", Total: 2}, s.TopProduct, "first product in input order wins a tie")
}

func TestAggregate_Daily(t *testing.T) {
	now := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	clicks := []models.Click{
		click(nil, time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)),   // first bucket
		click(nil, time.Date(2026, 5, 7, 23, 0, 0, 0, time.UTC)),  // before chart
		click(nil, time.Date(2026, 5, 14, 23, 59, 0, 0, time.UTC)), // last bucket
		click(nil, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)),  // after chart
		click(nil, time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC)),
	}

	s := Aggregate(nil, clicks, now)

	require.Len(t, s.Daily, DaysInChart)
	assert.True(t, s.Daily[0].Day.Equal(time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.Daily[6].Day.Equal(time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)))
	counts := make([]int, 0, DaysInChart)
	for _, d := range s.Daily {
		counts = append(counts, d.Count)
	}
	assert.Equal(t, []int{1, 0, 0, 1, 0, 0, 1}, counts)
}

func TestAggregate_Idempotent(t *testing.T) {
	now := time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)
	products := []models.Product{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	clicks := []models.Click{click(pid(2), now.Add(-time.Hour)), click(pid(1), now.AddDate(0, 0, -2)), click(pid(5), now)}

	first := Aggregate(products, clicks, now)
	second := Aggregate(products, clicks, now)

	assert.Equal(t, first, second)
	assert.Equal(t, "A", products[0].Name, "inputs are not mutated")
	assert.Equal(t, uint(2), *clicks[0].ProductID)
}

func TestStartOfDay(t *testing.T) {
	zone := time.FixedZone("X", 3*3600)
	got := StartOfDay(time.Date(2026, 1, 2, 22, 15, 7, 99, zone))
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, zone), got)
}
