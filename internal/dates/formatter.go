// AngelaMos | 2026
// formatter.go

// Package dates renders timestamps in a viewer's time zone.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DateLayout         = "January 2"
	DateWithYearLayout = "January 2, 2006"
	TimeLayout         = "3:04 PM"
)

const locationCacheSize = 256

var locations, _ = lru.New[string, *time.Location](locationCacheSize)

// LoadLocation resolves an IANA zone name. Empty and "UTC" map to time.UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	if loc, ok := locations.Get(name); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	locations.Add(name, loc)
	return loc, nil
}

// LocationOrUTC is LoadLocation that falls back to UTC on an unknown zone.
func LocationOrUTC(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Formatter is bound to one zone. The zero value formats in UTC.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) Formatter {
	return Formatter{loc: loc}
}

// WithClock returns a copy that reads the current time from now.
func (f Formatter) WithClock(now func() time.Time) Formatter {
	f.now = now
	return f
}

func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

func (f Formatter) Local(t time.Time) time.Time {
	return t.In(f.Location())
}

func (f Formatter) current() time.Time {
	if f.now != nil {
		return f.Local(f.now())
	}
	return f.Local(time.Now())
}

// DisplayDate renders "October 11", or "October 11, 2018" outside the
// current year. A non-empty layout overrides both.
func (f Formatter) DisplayDate(ts *time.Time, layout string) string {
	if ts == nil {
		return ""
	}
	local := f.Local(*ts)
	switch {
	case layout != "":
		return local.Format(layout)
	case local.Year() == f.current().Year():
		return local.Format(DateLayout)
	default:
		return local.Format(DateWithYearLayout)
	}
}

// DisplayTime renders "4:22 PM" unless layout is given.
func (f Formatter) DisplayTime(ts *time.Time, layout string) string {
	if ts == nil {
		return ""
	}
	if layout == "" {
		layout = TimeLayout
	}
	return f.Local(*ts).Format(layout)
}

// DisplayDateAndTime renders "Today at 4:22 PM", "Yesterday at 2:12 PM" or
// "April 24 at 7:39 AM". Today and yesterday are calendar dates in the
// formatter's zone.
func (f Formatter) DisplayDateAndTime(ts *time.Time, dateLayout, timeLayout string) string {
	if ts == nil {
		return ""
	}
	local := f.Local(*ts)
	now := f.current()
	clock := f.DisplayTime(ts, timeLayout)

	switch {
	case sameDay(local, now):
		return "Today at " + clock
	case sameDay(local, now.AddDate(0, 0, -1)):
		return "Yesterday at " + clock
	default:
		return f.DisplayDate(ts, dateLayout) + " at " + clock
	}
}

// DisplayRelative renders "3 hours ago" or "2 days from now".
func (f Formatter) DisplayRelative(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return humanize.RelTime(*ts, f.current(), "ago", "from now")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
