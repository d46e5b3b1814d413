package bokadirekt

import "encoding/json"

// Query identifies the availability window to read.
// Empty identifiers are sent as empty path segments; the API decides what
// that means.
type Query struct {
	ServiceID string
	SalonID   string
	StaffID   string

	// WindowStart and WindowEnd are epoch milliseconds.
	WindowStart int64
	WindowEnd   int64
}

// Slot is one bookable appointment window as returned by the API.
type Slot struct {
	// Start is the slot start in epoch milliseconds.
	Start int64 `json:"start"`
	// Duration is the slot length in minutes.
	Duration       int             `json:"duration"`
	EmployeeID     int64           `json:"employeeId"`
	EmployeePrices *EmployeePrices `json:"employeePrices"`
}

// EmployeePrices holds the price of a slot for the assigned employee.
// Price is nil when the field is absent from the response.
type EmployeePrices struct {
	Price      *float64 `json:"price"`
	PriceLabel string   `json:"priceLabel"`
}

// Amount returns the numeric price, or 0 when it is unknown.
func (p *EmployeePrices) Amount() float64 {
	if p == nil || p.Price == nil {
		return 0
	}
	return *p.Price
}

// Availability is the decoded "fromErp" list.
// Raw holds the upstream JSON of each slot, index-aligned with Slots.
type Availability struct {
	Slots []Slot
	Raw   []json.RawMessage
}

// Len returns the number of slots.
func (a *Availability) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Slots)
}
