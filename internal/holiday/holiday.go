package holiday

import "time"

// seasonMonths peak travel months
var seasonMonths = map[time.Month]bool{
	time.December: true,
	time.January:  true,
	time.April:    true,
	time.May:      true,
	time.October:  true,
}

// IsHolidaySeason reports whether the month falls in the fixed holiday season.
func IsHolidaySeason(m time.Month) bool {
	return seasonMonths[m]
}

// SeasonMonths returns the holiday-season months in calendar order.
func SeasonMonths() []time.Month {
	out := make([]time.Month, 0, len(seasonMonths))
	for m := time.January; m <= time.December; m++ {
		if seasonMonths[m] {
			out = append(out, m)
		}
	}
	return out
}

// IsWeekend Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdayIndex numbers days Monday=0 .. Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DaysBetween counts calendar days from the date of `from` to the date of `to`,
// both read in the location of `from`.
func DaysBetween(from, to time.Time) int {
	loc := from.Location()
	to = to.In(loc)
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
