package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimetable() Timetable {
	return Timetable{
		"Monday": {
			"A1": {{StartTime: "09:00", EndTime: "09:50"}, {StartTime: "10:00", EndTime: "10:50"}},
			"B1": {{StartTime: "14:00", EndTime: "15:00"}},
		},
		"Wednesday": {
			"A1": {{StartTime: "09:00", EndTime: "09:50"}},
		},
	}
}

func TestValidDates_ExcludesPastDates(t *testing.T) {
	// Monday 16 June 2025
	today := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)

	dates := ValidDates(testTimetable(), "A1", 2025, time.June, today)

	require.NotEmpty(t, dates)
	for _, key := range dates {
		d, err := ParseDateKey(key, time.UTC)
		require.NoError(t, err)
		assert.False(t, d.Before(today), "date %s is before today", key)
	}
	// Mondays 2 and 9 June and Wednesdays 4 and 11 June precede today.
	assert.NotContains(t, dates, "09/06/2025")
	assert.NotContains(t, dates, "11/06/2025")
}

func TestValidDates_TodayIsIncluded(t *testing.T) {
	today := time.Date(2025, time.June, 16, 13, 45, 0, 0, time.UTC) // Monday afternoon

	dates := ValidDates(testTimetable(), "A1", 2025, time.June, today)

	assert.Contains(t, dates, "16/06/2025", "today itself should remain bookable")
}

func TestValidDates_OnlyTimetabledWeekdays(t *testing.T) {
	today := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	dates := ValidDates(testTimetable(), "A1", 2025, time.June, today)

	require.NotEmpty(t, dates)
	for _, key := range dates {
		d, err := ParseDateKey(key, time.UTC)
		require.NoError(t, err)
		wd := d.Weekday()
		assert.True(t, wd == time.Monday || wd == time.Wednesday, "unexpected weekday %s for %s", wd, key)
	}
}

func TestValidDates_UnknownService(t *testing.T) {
	today := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, ValidDates(testTimetable(), "C2", 2025, time.June, today))
}

func TestValidDates_ServiceOnSingleWeekday(t *testing.T) {
	today := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	dates := ValidDates(testTimetable(), "B1", 2025, time.June, today)

	require.NotEmpty(t, dates)
	for _, key := range dates {
		d, err := ParseDateKey(key, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestAvailableSlots_BookedSlotRemoved(t *testing.T) {
	monday := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{DateKey: "16/06/2025", StartTime: "09:00", EndTime: "09:50"},
	}

	free := AvailableSlots(testTimetable(), "A1", monday, bookings)

	assert.Equal(t, []Slot{{StartTime: "10:00", EndTime: "10:50"}}, free)
}

func TestAvailableSlots_CancelledBookingDoesNotBlock(t *testing.T) {
	monday := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{DateKey: "16/06/2025", StartTime: "09:00", EndTime: "09:50", Cancelled: true},
	}

	free := AvailableSlots(testTimetable(), "A1", monday, bookings)

	assert.Len(t, free, 2)
}

func TestAvailableSlots_OtherDateDoesNotBlock(t *testing.T) {
	monday := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{
		{DateKey: "23/06/2025", StartTime: "09:00", EndTime: "09:50"},
	}

	free := AvailableSlots(testTimetable(), "A1", monday, bookings)

	assert.Len(t, free, 2)
}

func TestAvailableSlots_NoTimetableForWeekday(t *testing.T) {
	tuesday := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, AvailableSlots(testTimetable(), "A1", tuesday, nil))
}

func TestFilterStartTimes(t *testing.T) {
	tests := []struct {
		name     string
		windows  []string
		duration int
		step     int
		want     []string
	}{
		{
			name:     "boundary inclusive, 50 minutes in one hour window",
			windows:  []string{"09:00-10:00"},
			duration: 50,
			step:     15,
			want:     []string{"09:00"},
		},
		{
			name:     "exact fit qualifies",
			windows:  []string{"09:00-10:00"},
			duration: 60,
			step:     15,
			want:     []string{"09:00"},
		},
		{
			name:     "duration longer than window",
			windows:  []string{"09:00-10:00"},
			duration: 70,
			step:     15,
			want:     []string{},
		},
		{
			name:     "thirty minute grid",
			windows:  []string{"09:00-11:00"},
			duration: 60,
			step:     30,
			want:     []string{"09:00", "09:30", "10:00"},
		},
		{
			name:     "multiple windows sorted and merged",
			windows:  []string{"14:00-15:00", "09:00-09:45"},
			duration: 30,
			step:     15,
			want:     []string{"09:00", "09:15", "14:00", "14:15", "14:30"},
		},
		{
			name:     "invalid window skipped",
			windows:  []string{"banana", "12:00-09:00", "09:00-10:00"},
			duration: 60,
			step:     15,
			want:     []string{"09:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterStartTimes(tt.windows, tt.duration, tt.step)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWindow_RejectsMidnightCrossing(t *testing.T) {
	_, err := ParseWindow("22:00-02:00")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{"disjoint", "09:00", "09:50", "10:00", "10:50", false},
		{"identical", "09:00", "09:50", "09:00", "09:50", true},
		{"partial", "09:00", "09:50", "09:30", "10:20", true},
		{"shared boundary", "09:00", "10:00", "10:00", "11:00", false},
		{"contained", "09:00", "12:00", "10:00", "10:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimetableValidate(t *testing.T) {
	assert.NoError(t, testTimetable().Validate())

	bad := Timetable{"Funday": {"A1": {{StartTime: "09:00", EndTime: "10:00"}}}}
	assert.Error(t, bad.Validate())

	inverted := Timetable{"Monday": {"A1": {{StartTime: "10:00", EndTime: "09:00"}}}}
	assert.Error(t, inverted.Validate())
}
