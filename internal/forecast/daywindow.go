package forecast

import (
	"time"

	"github.com/gaccwx/psafire/internal/models"
)

const dateFormat = "2006-01-02"

// DayWindow maps the eight logical day labels onto calendar dates for one
// aggregation pass. It is computed fresh on every call so a long-running
// process never carries yesterday's mapping across a date boundary.
type DayWindow struct {
	Today time.Time
	Dates map[models.DayLabel]string
}

// NewDayWindow builds the label→date mapping relative to today: yd is
// today−1, td is today, and the six forecast labels are the next occurrences
// of Wed/Thu/Fri/Sat/Sun/Mon strictly after today. A target weekday that
// falls on today itself maps seven days ahead, so the final Monday label is
// always strictly in the future even when today is a Monday.
func NewDayWindow(today time.Time) DayWindow {
	// Midnight of the anchor's own calendar day. Truncate would round against
	// the UTC epoch and land on the wrong day in non-UTC locations.
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	dates := map[models.DayLabel]string{
		models.DayYesterday: today.AddDate(0, 0, -1).Format(dateFormat),
		models.DayToday:     today.Format(dateFormat),
		models.DayWed:       nextWeekday(today, time.Wednesday).Format(dateFormat),
		models.DayThu:       nextWeekday(today, time.Thursday).Format(dateFormat),
		models.DayFri:       nextWeekday(today, time.Friday).Format(dateFormat),
		models.DaySat:       nextWeekday(today, time.Saturday).Format(dateFormat),
		models.DaySun:       nextWeekday(today, time.Sunday).Format(dateFormat),
		models.DayMon:       nextWeekday(today, time.Monday).Format(dateFormat),
	}

	return DayWindow{Today: today, Dates: dates}
}

// nextWeekday returns the next occurrence of target strictly after d.
func nextWeekday(d time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(d.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDate(0, 0, days)
}

// Date resolves a label to its calendar date.
func (w DayWindow) Date(label models.DayLabel) string {
	return w.Dates[label]
}

// Start returns the earliest date in the window (always yesterday).
func (w DayWindow) Start() string {
	min := ""
	for _, d := range w.Dates {
		if min == "" || d < min {
			min = d
		}
	}
	return min
}

// End returns the latest date in the window.
func (w DayWindow) End() string {
	max := ""
	for _, d := range w.Dates {
		if d > max {
			max = d
		}
	}
	return max
}
