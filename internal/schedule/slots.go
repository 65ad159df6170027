package schedule

import (
	"sort"
	"time"
)

// Booking is the projection of an existing appointment the slot engine
// needs: which date key it occupies, its exact slot times and whether it
// still consumes the slot.
type Booking struct {
	DateKey   string
	StartTime string
	EndTime   string
	Cancelled bool
}

// DefaultStepMinutes is the grid used when proposing custom start times.
const DefaultStepMinutes = 15

// ValidDates returns the dd/mm/yyyy keys in the given month that are
// bookable for the service: the weekday must carry at least one timetable
// slot for the service code and the date must be today or later. Today is
// compared at local midnight in today's location.
func ValidDates(tt Timetable, serviceCode string, year int, month time.Month, today time.Time) []string {
	loc := today.Location()
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	var keys []string
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Before(floor) {
			continue
		}
		if len(tt.ForDay(d.Weekday(), serviceCode)) == 0 {
			continue
		}
		keys = append(keys, DateKey(d))
	}
	return keys
}

// AvailableSlots returns the timetable slots for the date's weekday and
// service that are not already consumed by a non-cancelled booking on that
// date. Matching is by exact start/end string, mirroring how bookings are
// created from timetable slots; cancelled bookings never consume a slot.
func AvailableSlots(tt Timetable, serviceCode string, date time.Time, bookings []Booking) []Slot {
	slots := tt.ForDay(date.Weekday(), serviceCode)
	if len(slots) == 0 {
		return nil
	}

	key := DateKey(date)
	taken := make(map[Slot]struct{})
	for _, b := range bookings {
		if b.Cancelled || b.DateKey != key {
			continue
		}
		taken[Slot{StartTime: b.StartTime, EndTime: b.EndTime}] = struct{}{}
	}

	free := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; ok {
			continue
		}
		free = append(free, s)
	}
	return free
}

// FilterStartTimes proposes start times for a service of the given
// duration inside the supplied free-text windows ("09:00-12:00").
// Candidates are generated on a fixed grid anchored at each window start;
// a candidate qualifies when start+duration ends at or before the window
// end. Invalid windows are skipped. Results are sorted and de-duplicated.
func FilterStartTimes(windows []string, durationMinutes, stepMinutes int) []string {
	if durationMinutes <= 0 {
		return nil
	}
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}

	seen := make(map[int]struct{})
	var starts []int
	for _, raw := range windows {
		w, err := ParseWindow(raw)
		if err != nil {
			continue
		}
		for t := w.Start; t+durationMinutes <= w.End; t += stepMinutes {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			starts = append(starts, t)
		}
	}
	sort.Ints(starts)

	out := make([]string, 0, len(starts))
	for _, t := range starts {
		out = append(out, FormatClock(t))
	}
	return out
}

// Overlaps reports whether two HH:MM intervals on the same date overlap.
// Intervals sharing only a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) (bool, error) {
	as, err := ParseClock(aStart)
	if err != nil {
		return false, err
	}
	ae, err := ParseClock(aEnd)
	if err != nil {
		return false, err
	}
	bs, err := ParseClock(bStart)
	if err != nil {
		return false, err
	}
	be, err := ParseClock(bEnd)
	if err != nil {
		return false, err
	}
	return as < be && bs < ae, nil
}
