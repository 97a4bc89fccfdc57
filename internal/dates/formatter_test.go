// AngelaMos | 2026
// formatter_test.go

package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func ptr(t time.Time) *time.Time { return &t }

func TestDisplayDate(t *testing.T) {
	now := time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC)
	f := New(time.UTC).WithClock(fixedClock(now))

	assert.Equal(t, "April 24", f.DisplayDate(ptr(time.Date(2026, time.April, 24, 9, 0, 0, 0, time.UTC)), ""))
	assert.Equal(t, "October 11, 2018", f.DisplayDate(ptr(time.Date(2018, time.October, 11, 9, 0, 0, 0, time.UTC)), ""))
	assert.Equal(t, "2026-04-24", f.DisplayDate(ptr(time.Date(2026, time.April, 24, 9, 0, 0, 0, time.UTC)), "2006-01-02"))
	assert.Empty(t, f.DisplayDate(nil, ""))
}

func TestDisplayTime(t *testing.T) {
	f := New(time.UTC)

	assert.Equal(t, "4:22 PM", f.DisplayTime(ptr(time.Date(2026, 1, 1, 16, 22, 0, 0, time.UTC)), ""))
	assert.Equal(t, "7:05 AM", f.DisplayTime(ptr(time.Date(2026, 1, 1, 7, 5, 0, 0, time.UTC)), ""))
	assert.Equal(t, "16:22", f.DisplayTime(ptr(time.Date(2026, 1, 1, 16, 22, 0, 0, time.UTC)), "15:04"))
	assert.Empty(t, f.DisplayTime(nil, ""))
}

func TestDisplayTimeConvertsZone(t *testing.T) {
	f := New(mustLoad(t, "America/New_York"))

	assert.Equal(t, "12:00 PM", f.DisplayTime(ptr(time.Date(2026, time.July, 1, 16, 0, 0, 0, time.UTC)), ""))
}

func TestDisplayDateAndTime(t *testing.T) {
	now := time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC)
	f := New(time.UTC).WithClock(fixedClock(now))

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"today", time.Date(2026, time.October, 17, 9, 5, 0, 0, time.UTC), "Today at 9:05 AM"},
		{"yesterday", time.Date(2026, time.October, 16, 14, 12, 0, 0, time.UTC), "Yesterday at 2:12 PM"},
		{"this year", time.Date(2026, time.April, 24, 7, 39, 0, 0, time.UTC), "April 24 at 7:39 AM"},
		{"older", time.Date(2018, time.October, 11, 16, 22, 0, 0, time.UTC), "October 11, 2018 at 4:22 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.DisplayDateAndTime(ptr(tt.ts), "", ""))
		})
	}

	assert.Empty(t, f.DisplayDateAndTime(nil, "", ""))
}

func TestDisplayDateAndTimeUsesCalendarDays(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	now := time.Date(2026, time.October, 17, 0, 30, 0, 0, tokyo)
	f := New(tokyo).WithClock(fixedClock(now))

	twoHoursAgo := now.Add(-2 * time.Hour)
	assert.Equal(t, "Yesterday at 10:30 PM", f.DisplayDateAndTime(&twoHoursAgo, "", ""))

	// The same instant viewed from UTC is still the same calendar day.
	utc := New(time.UTC).WithClock(fixedClock(now))
	assert.Equal(t, "Today at 1:30 PM", utc.DisplayDateAndTime(&twoHoursAgo, "", ""))
}

func TestDisplayRelative(t *testing.T) {
	now := time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC)
	f := New(time.UTC).WithClock(fixedClock(now))

	assert.Equal(t, "3 hours ago", f.DisplayRelative(ptr(now.Add(-3*time.Hour))))
	assert.Equal(t, "2 days from now", f.DisplayRelative(ptr(now.Add(50*time.Hour))))
	assert.Empty(t, f.DisplayRelative(nil))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	first := mustLoad(t, "Europe/Berlin")
	second := mustLoad(t, "Europe/Berlin")
	assert.Same(t, first, second)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, LocationOrUTC("Mars/Olympus"))
}

func TestZeroFormatterIsUTC(t *testing.T) {
	var f Formatter

	assert.Equal(t, time.UTC, f.Location())
}
