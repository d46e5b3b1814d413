package availability

import (
	"fmt"
	"time"

	"github.com/teemow/haircut-mcp/internal/bokadirekt"
)

// Layouts used for rendering. DateLayout matches the long US form, e.g.
// "Monday, July 21, 2025".
const (
	DateLayout = "Monday, January 2, 2006"
	TimeLayout = "15:04"
)

// Employee is the resolved employee of a slot.
type Employee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FormattedSlot is the display form of a bokadirekt.Slot.
type FormattedSlot struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Duration  string   `json:"duration"`
	Price     string   `json:"price"`
	Employee  Employee `json:"employee"`
}

// FormatSlot renders s in loc. The end time is always start plus duration.
func FormatSlot(s bokadirekt.Slot, dir Directory, loc *time.Location) FormattedSlot {
	if loc == nil {
		loc = time.Local
	}
	start := time.UnixMilli(s.Start).In(loc)
	end := start.Add(time.Duration(s.Duration) * time.Minute)

	var priceLabel string
	if s.EmployeePrices != nil {
		priceLabel = s.EmployeePrices.PriceLabel
	}

	return FormattedSlot{
		ID:        fmt.Sprintf("%d-%d", s.Start, s.EmployeeID),
		Date:      start.Format(DateLayout),
		StartTime: start.Format(TimeLayout),
		EndTime:   end.Format(TimeLayout),
		Duration:  fmt.Sprintf("%d minutes", s.Duration),
		Price:     priceLabel,
		Employee: Employee{
			ID:   s.EmployeeID,
			Name: dir.Lookup(s.EmployeeID),
		},
	}
}

// FormatDate renders t as a long date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
