package okr

import (
	"time"

	"okrproject/models"
)

// Month buckets compare against this year only; the objective's own year
// is not taken into account when building a monthly series.
const referenceYear = 2024

var Quarters = []string{"Q1", "Q2", "Q3", "Q4"}

// QuarterOf returns the calendar quarter label of t.
func QuarterOf(t time.Time) string {
	switch m := t.Month(); {
	case m <= time.March:
		return "Q1"
	case m <= time.June:
		return "Q2"
	case m <= time.September:
		return "Q3"
	default:
		return "Q4"
	}
}

// QuarterMonths returns the three months of quarter, or nil for an unknown label.
func QuarterMonths(quarter string) []time.Month {
	for i, q := range Quarters {
		if q == quarter {
			first := time.Month(i*3 + 1)
			return []time.Month{first, first + 1, first + 2}
		}
	}
	return nil
}

// QuarterLabels walks from start in three month steps while the cursor is
// not after end and collects the distinct quarters seen, in order.
func QuarterLabels(start, end time.Time) []string {
	labels := []string{}
	seen := make(map[string]bool, 4)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 3, 0) {
		q := QuarterOf(cur)
		if !seen[q] {
			seen[q] = true
			labels = append(labels, q)
		}
	}
	return labels
}

func firstOfMonth(m time.Month) time.Time {
	return time.Date(referenceYear, m, 1, 0, 0, 0, 0, time.UTC)
}

// ActiveInMonth reports whether o spans the first day of month m in the
// reference year.
func ActiveInMonth(o *models.Objective, m time.Month) bool {
	ref := firstOfMonth(m)
	return !o.StartDate.After(ref) && !o.EndDate.Before(ref)
}

// InDateRange reports whether the span of o lies inside [from, to]. Either
// bound may be nil. This is containment, not overlap: an objective that
// starts before from does not match even if it ends inside the window.
func InDateRange(o *models.Objective, from, to *time.Time) bool {
	if from != nil && o.StartDate.Before(*from) {
		return false
	}
	if to != nil && o.EndDate.After(*to) {
		return false
	}
	return true
}

// MonthsForFilter picks the months a monthly series covers. A full date
// range selects its months (wrapping past December), a quarter selects its
// three months, anything else selects the whole year.
func MonthsForFilter(f Filter) []time.Month {
	if f.From != nil && f.To != nil {
		startMonth, endMonth := f.From.Month(), f.To.Month()
		var months []time.Month
		if startMonth <= endMonth {
			for m := startMonth; m <= endMonth; m++ {
				months = append(months, m)
			}
			return months
		}
		for m := startMonth; m <= time.December; m++ {
			months = append(months, m)
		}
		for m := time.January; m <= endMonth; m++ {
			months = append(months, m)
		}
		return months
	}
	if !isAll(f.Quarter) {
		if months := QuarterMonths(f.Quarter); months != nil {
			return months
		}
	}
	months := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m)
	}
	return months
}
