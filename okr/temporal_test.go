package okr

import (
	"testing"
	"time"

	"okrproject/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestQuarterOf(t *testing.T) {
	assert.Equal(t, "Q1", QuarterOf(date(2024, time.January, 15)))
	assert.Equal(t, "Q1", QuarterOf(date(2024, time.March, 31)))
	assert.Equal(t, "Q2", QuarterOf(date(2024, time.April, 1)))
	assert.Equal(t, "Q3", QuarterOf(date(1999, time.August, 9)))
	assert.Equal(t, "Q4", QuarterOf(date(2024, time.December, 31)))
}

func TestQuarterLabels(t *testing.T) {
	assert.Equal(t, []string{"Q1"}, QuarterLabels(date(2024, 1, 1), date(2024, 3, 31)))
	assert.Equal(t, []string{"Q1", "Q2"}, QuarterLabels(date(2024, 2, 1), date(2024, 5, 31)))
	assert.Equal(t, []string{"Q4", "Q1"}, QuarterLabels(date(2024, 11, 1), date(2025, 2, 28)))
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, QuarterLabels(date(2024, 1, 1), date(2025, 6, 1)))
	assert.Empty(t, QuarterLabels(date(2024, 5, 1), date(2024, 4, 1)))
}

func TestQuarterLabelsStepOverflow(t *testing.T) {
	// Nov 30 + 3 months normalises to Mar 2.
	assert.Equal(t, []string{"Q4", "Q1"}, QuarterLabels(date(2024, 11, 30), date(2025, 3, 2)))
	assert.Equal(t, []string{"Q4"}, QuarterLabels(date(2024, 11, 30), date(2025, 3, 1)))
}

func TestInDateRangeIsContainment(t *testing.T) {
	from, to := ptr(date(2024, 2, 1)), ptr(date(2024, 5, 1))

	early := &models.Objective{StartDate: date(2024, 1, 1), EndDate: date(2024, 3, 1)}
	inside := &models.Objective{StartDate: date(2024, 2, 15), EndDate: date(2024, 4, 15)}
	late := &models.Objective{StartDate: date(2024, 3, 1), EndDate: date(2024, 6, 1)}
	edges := &models.Objective{StartDate: date(2024, 2, 1), EndDate: date(2024, 5, 1)}

	assert.False(t, InDateRange(early, from, to))
	assert.True(t, InDateRange(inside, from, to))
	assert.False(t, InDateRange(late, from, to), "overlapping is not enough")
	assert.True(t, InDateRange(edges, from, to))

	assert.True(t, InDateRange(early, nil, to))
	assert.True(t, InDateRange(late, from, nil))
	assert.True(t, InDateRange(late, nil, nil))
}

func TestActiveInMonth(t *testing.T) {
	o := &models.Objective{StartDate: date(2024, 2, 1), EndDate: date(2024, 4, 15)}
	assert.False(t, ActiveInMonth(o, time.January))
	assert.True(t, ActiveInMonth(o, time.February))
	assert.True(t, ActiveInMonth(o, time.April))
	assert.False(t, ActiveInMonth(o, time.May))

	// A mid-month start misses that month's first day.
	mid := &models.Objective{StartDate: date(2024, 2, 10), EndDate: date(2024, 3, 20)}
	assert.False(t, ActiveInMonth(mid, time.February))
	assert.True(t, ActiveInMonth(mid, time.March))
}

func TestMonthsForFilter(t *testing.T) {
	assert.Len(t, MonthsForFilter(Filter{}), 12)
	assert.Equal(t, []time.Month{time.April, time.May, time.June}, MonthsForFilter(Filter{Quarter: "Q2"}))
	assert.Len(t, MonthsForFilter(Filter{Quarter: "all"}), 12)

	assert.Equal(t,
		[]time.Month{time.February, time.March, time.April, time.May},
		MonthsForFilter(Filter{From: ptr(date(2024, 2, 1)), To: ptr(date(2024, 5, 1))}))
	assert.Equal(t,
		[]time.Month{time.November, time.December, time.January},
		MonthsForFilter(Filter{From: ptr(date(2024, 11, 1)), To: ptr(date(2025, 1, 31))}))

	// a single bound falls through to the quarter rule
	assert.Equal(t, []time.Month{time.October, time.November, time.December},
		MonthsForFilter(Filter{From: ptr(date(2024, 2, 1)), Quarter: "Q4"}))
}
