package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekDates(t *testing.T) {
	cases := []struct {
		now         time.Time
		expectFirst string
		expectLast  string
	}{
		{
			// a wednesday
			now:         time.Date(2024, time.August, 28, 13, 30, 0, 0, Location),
			expectFirst: "2024-08-25",
			expectLast:  "2024-09-01",
		},
		{
			// already a sunday
			now:         time.Date(2024, time.August, 25, 0, 0, 0, 0, Location),
			expectFirst: "2024-08-25",
			expectLast:  "2024-09-01",
		},
		{
			// saturday, end of the week
			now:         time.Date(2024, time.August, 31, 23, 59, 0, 0, Location),
			expectFirst: "2024-08-25",
			expectLast:  "2024-09-01",
		},
		{
			// week crossing a year boundary
			now:         time.Date(2024, time.December, 31, 8, 0, 0, 0, Location),
			expectFirst: "2024-12-29",
			expectLast:  "2025-01-05",
		},
	}

	for _, test := range cases {
		dates := WeekDates(test.now)
		require.Len(t, dates, 8)
		require.Equal(t, test.expectFirst, dates[0])
		require.Equal(t, test.expectLast, dates[7])

		for i := 1; i < len(dates); i++ {
			require.Less(t, dates[i-1], dates[i])
		}
	}
}

func TestWeekDatesContainNow(t *testing.T) {
	now := Now()
	dates := WeekDates(now)
	require.Contains(t, dates, now.Format(DateLayout))
}
