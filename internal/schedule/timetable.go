package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot is a fixed bookable window from a midwife's weekly timetable,
// expressed as HH:MM strings in the midwife's local time.
type Slot struct {
	StartTime string `json:"startTime" db:"start_time"`
	EndTime   string `json:"endTime" db:"end_time"`
}

// Timetable maps weekday name -> service code -> bookable slots.
// It is static per midwife and never mutated by booking flows.
type Timetable map[string]map[string][]Slot

// DateKeyLayout is the dd/mm/yyyy format used for appointment dates
// throughout the API.
const DateKeyLayout = "02/01/2006"

// ForDay returns the timetable slots for a weekday and service code.
// Weekday names are matched case-insensitively.
func (tt Timetable) ForDay(day time.Weekday, serviceCode string) []Slot {
	for name, services := range tt {
		if !strings.EqualFold(name, day.String()) {
			continue
		}
		return services[serviceCode]
	}
	return nil
}

// HasService reports whether any weekday offers the service code.
func (tt Timetable) HasService(serviceCode string) bool {
	for _, services := range tt {
		if len(services[serviceCode]) > 0 {
			return true
		}
	}
	return false
}

// Validate checks weekday names, service slot clocks and window ordering.
func (tt Timetable) Validate() error {
	for name, services := range tt {
		if !validWeekday(name) {
			return fmt.Errorf("unknown weekday %q", name)
		}
		for code, slots := range services {
			for i, s := range slots {
				start, err := ParseClock(s.StartTime)
				if err != nil {
					return fmt.Errorf("%s/%s slot %d: %w", name, code, i, err)
				}
				end, err := ParseClock(s.EndTime)
				if err != nil {
					return fmt.Errorf("%s/%s slot %d: %w", name, code, i, err)
				}
				if start >= end {
					return fmt.Errorf("%s/%s slot %d: start %s not before end %s", name, code, i, s.StartTime, s.EndTime)
				}
			}
		}
	}
	return nil
}

func validWeekday(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return true
		}
	}
	return false
}

// ParseClock parses an HH:MM 24h clock into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateKey renders a time as the dd/mm/yyyy key used for appointment dates.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a dd/mm/yyyy key at local midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// Window is a parsed "HH:MM-HH:MM" time range, in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// ParseWindow parses a free-text range such as "09:00-12:00". Ranges
// crossing midnight (start >= end) are rejected.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid time range %q", s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid time range %q: %w", s, err)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid time range %q: %w", s, err)
	}
	if start >= end {
		return Window{}, fmt.Errorf("invalid time range %q: start not before end", s)
	}
	return Window{Start: start, End: end}, nil
}
