package availability

import (
	"strconv"
	"strings"
)

// UnknownEmployee is the display name for ids missing from the Directory.
const UnknownEmployee = "Unknown"

// Directory maps employee ids to display names.
type Directory map[int64]string

// NewDirectory builds a Directory holding the configured staff member.
// The result is empty when the id or name is missing or the id is not an
// integer, in which case every lookup yields UnknownEmployee.
func NewDirectory(staffID, staffName string) Directory {
	dir := Directory{}
	if staffID == "" || staffName == "" {
		return dir
	}
	id, err := strconv.ParseInt(strings.TrimSpace(staffID), 10, 64)
	if err != nil {
		return dir
	}
	dir[id] = staffName
	return dir
}

// Lookup returns the display name for id.
func (d Directory) Lookup(id int64) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}
	return UnknownEmployee
}
