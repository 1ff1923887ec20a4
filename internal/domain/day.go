package domain

import "time"

// StreakWindowDays is the longest streak reported, today included
const StreakWindowDays = 30

const dayKeyLayout = "20060102"

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayRange returns the half-open [start, end) interval of t's calendar day
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// AddDays adds whole calendar days, keeping the wall clock time
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// StreakWindowStart returns midnight of the oldest day a streak ending on
// now's day can reach
func StreakWindowStart(now time.Time) time.Time {
	return AddDays(StartOfDay(now), -(StreakWindowDays - 1))
}

// ConsecutiveDays counts calendar days ending today that contain at least one
// timestamp. Days are evaluated in now's location. Zero when today is empty.
func ConsecutiveDays(timestamps []time.Time, now time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}

	days := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		days[ts.In(now.Location()).Format(dayKeyLayout)] = struct{}{}
	}

	streak := 0
	day := StartOfDay(now)
	for streak < StreakWindowDays {
		if _, ok := days[day.Format(dayKeyLayout)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
