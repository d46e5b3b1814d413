package availability

import (
	"fmt"
	"strings"
)

const (
	textHeader = "AVAILABLE HAIRCUT APPOINTMENTS"
	textFooter = "To book an appointment, please choose one of the times listed above."
)

// RenderText renders r as the human-readable summary returned next to the
// structured report.
func RenderText(r *Report) string {
	var sb strings.Builder

	sb.WriteString(textHeader + "\n\n")

	names := r.EmployeeNames()
	if len(names) == 0 {
		fmt.Fprintf(&sb, "Found %d available time slot(s).\n\n", r.TotalAvailableSlots)
	} else {
		fmt.Fprintf(&sb, "Found %d available time slot(s) with %s:\n\n", r.TotalAvailableSlots, strings.Join(names, ", "))
	}

	for _, date := range r.AppointmentsByDate.Dates() {
		fmt.Fprintf(&sb, "📅 %s:\n", date)
		for _, s := range r.AppointmentsByDate.Slots(date) {
			fmt.Fprintf(&sb, "   ✂️  %s to %s with %s (%s)\n", s.StartTime, s.EndTime, s.Employee.Name, s.Price)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + textFooter)
	return sb.String()
}
