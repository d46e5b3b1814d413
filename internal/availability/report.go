package availability

import (
	"encoding/json"
	"time"

	"github.com/teemow/haircut-mcp/internal/bokadirekt"
)

// DefaultCurrency is the currency of BokaDirekt prices.
const DefaultCurrency = "SEK"

// PriceRange is the span of slot prices.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Report is the structured result of one availability lookup.
type Report struct {
	Today               string            `json:"today"`
	TotalAvailableSlots int               `json:"totalAvailableSlots"`
	AvailableDates      []string          `json:"availableDates"`
	AppointmentsByDate  *DateGroup        `json:"appointmentsByDate"`
	Employees           []Employee        `json:"employees"`
	PriceRange          *PriceRange       `json:"priceRange"`
	RawData             []json.RawMessage `json:"rawData"`

	slots []FormattedSlot
}

// Slots returns the formatted slots in upstream order.
func (r *Report) Slots() []FormattedSlot {
	return r.slots
}

// EmployeeNames returns the distinct employee names in first-seen order.
func (r *Report) EmployeeNames() []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, s := range r.slots {
		if seen[s.Employee.Name] {
			continue
		}
		seen[s.Employee.Name] = true
		names = append(names, s.Employee.Name)
	}
	return names
}

// BuildReport formats, groups and aggregates avail. today is the rendered
// current date.
func BuildReport(today string, avail *bokadirekt.Availability, dir Directory, loc *time.Location, currency string) *Report {
	if currency == "" {
		currency = DefaultCurrency
	}

	var rawSlots []bokadirekt.Slot
	raw := []json.RawMessage{}
	if avail != nil {
		rawSlots = avail.Slots
		if avail.Raw != nil {
			raw = avail.Raw
		}
	}

	formatted := make([]FormattedSlot, 0, len(rawSlots))
	for _, s := range rawSlots {
		formatted = append(formatted, FormatSlot(s, dir, loc))
	}

	groups := GroupByDate(formatted)

	return &Report{
		Today:               today,
		TotalAvailableSlots: len(rawSlots),
		AvailableDates:      groups.Dates(),
		AppointmentsByDate:  groups,
		Employees:           distinctEmployees(formatted),
		PriceRange:          priceRange(rawSlots, currency),
		RawData:             raw,
		slots:               formatted,
	}
}

// distinctEmployees returns one entry per employee id in first-seen order.
func distinctEmployees(slots []FormattedSlot) []Employee {
	seen := make(map[int64]bool)
	employees := []Employee{}
	for _, s := range slots {
		if seen[s.Employee.ID] {
			continue
		}
		seen[s.Employee.ID] = true
		employees = append(employees, s.Employee)
	}
	return employees
}

// priceRange returns nil when there are no slots.
func priceRange(slots []bokadirekt.Slot, currency string) *PriceRange {
	if len(slots) == 0 {
		return nil
	}
	pr := &PriceRange{Currency: currency}
	for i, s := range slots {
		price := s.EmployeePrices.Amount()
		if i == 0 || price < pr.Min {
			pr.Min = price
		}
		if i == 0 || price > pr.Max {
			pr.Max = price
		}
	}
	return pr
}
