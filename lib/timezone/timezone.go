package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// the menu page renders dates in campus-local time, so all date math
// has to happen in LA no matter where the process actually runs
func Now() time.Time {
	return time.Now().In(Location)
}

// DateLayout is the only date interchange format used across cache
// keys, page interaction and freshness comparison.
const DateLayout = "2006-01-02"

// Today returns the current calendar date as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

// WeekDates returns the Sunday of the week containing `now` through the
// following Sunday inclusive (8 calendar days) as YYYY-MM-DD strings.
func WeekDates(now time.Time) []string {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = start.AddDate(0, 0, -int(now.Weekday()))

	dates := make([]string, 0, 8)
	for i := 0; i <= 7; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}
