package availability

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DateGroup holds formatted slots keyed by date. Dates keep first-seen order
// and slots keep insertion order within a date; JSON output preserves both.
type DateGroup struct {
	dates *orderedmap.OrderedMap[string, []FormattedSlot]
}

// NewDateGroup returns an empty DateGroup.
func NewDateGroup() *DateGroup {
	return &DateGroup{dates: orderedmap.New[string, []FormattedSlot]()}
}

// GroupByDate groups slots by their Date field.
func GroupByDate(slots []FormattedSlot) *DateGroup {
	g := NewDateGroup()
	for _, s := range slots {
		g.Add(s)
	}
	return g
}

// Add appends s to the group of its date.
func (g *DateGroup) Add(s FormattedSlot) {
	existing, _ := g.dates.Get(s.Date)
	g.dates.Set(s.Date, append(existing, s))
}

// Dates returns the date keys in first-seen order.
func (g *DateGroup) Dates() []string {
	dates := make([]string, 0, g.dates.Len())
	for pair := g.dates.Oldest(); pair != nil; pair = pair.Next() {
		dates = append(dates, pair.Key)
	}
	return dates
}

// Slots returns the slots of date, or nil when the date is absent.
func (g *DateGroup) Slots(date string) []FormattedSlot {
	slots, _ := g.dates.Get(date)
	return slots
}

// Len returns the number of dates.
func (g *DateGroup) Len() int {
	return g.dates.Len()
}

// MarshalJSON encodes the group as an object whose keys are in date order.
func (g *DateGroup) MarshalJSON() ([]byte, error) {
	return g.dates.MarshalJSON()
}

// UnmarshalJSON decodes an object produced by MarshalJSON, keeping key order.
func (g *DateGroup) UnmarshalJSON(data []byte) error {
	if g.dates == nil {
		g.dates = orderedmap.New[string, []FormattedSlot]()
	}
	return g.dates.UnmarshalJSON(data)
}
