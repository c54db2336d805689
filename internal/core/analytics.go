package core

import (
	"sort"
	"time"
)

// DailyAmount aggregates income and expense for one calendar day.
type DailyAmount struct {
	Date    time.Time `json:"date"`
	Income  Money     `json:"income"`
	Expense Money     `json:"expense"`
}

// CategoryAmount aggregates the effective amounts of one category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Total    Money    `json:"total"`
	Count    int      `json:"count"`
}

// GroupByDay buckets the transactions with a date between from and to
// (inclusive, whole days in from's location) by calendar day, ascending.
func GroupByDay(txns []Transaction, from, to time.Time) []DailyAmount {
	loc := from.Location()
	start := dayStart(from)
	end := dayStart(to).AddDate(0, 0, 1)

	byDay := map[time.Time]*DailyAmount{}
	for _, t := range txns {
		d := t.Date.In(loc)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		key := dayStart(d)
		entry, ok := byDay[key]
		if !ok {
			entry = &DailyAmount{Date: key}
			byDay[key] = entry
		}
		cents := t.EffectiveAmount().Cents
		if t.Type == Income {
			entry.Income.Cents += cents
		} else {
			entry.Expense.Cents += cents
		}
	}

	out := make([]DailyAmount, 0, len(byDay))
	for _, entry := range byDay {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GroupByCategory sums the transactions with a date between from and to
// (inclusive, whole days in from's location) per category, largest total
// first; ties break on category name for a stable order.
func GroupByCategory(txns []Transaction, from, to time.Time) []CategoryAmount {
	loc := from.Location()
	start := dayStart(from)
	end := dayStart(to).AddDate(0, 0, 1)

	byCat := map[Category]*CategoryAmount{}
	for _, t := range txns {
		d := t.Date.In(loc)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		entry, ok := byCat[t.Category]
		if !ok {
			entry = &CategoryAmount{Category: t.Category}
			byCat[t.Category] = entry
		}
		entry.Total.Cents += t.EffectiveAmount().Cents
		entry.Count++
	}

	out := make([]CategoryAmount, 0, len(byCat))
	for _, entry := range byCat {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
