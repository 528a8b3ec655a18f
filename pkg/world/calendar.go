package world

import "fmt"

const (
	HoursPerDay   = 24
	DaysPerMonth  = 30
	MonthsPerYear = 12
)

// Calendar is the in-game date. Month and Day are 1-based.
type Calendar struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
	Hour  int `json:"hour"`
}

// Advance moves the calendar forward and normalizes every field.
// Negative amounts are ignored.
func (c Calendar) Advance(hours int) Calendar {
	if hours < 0 {
		hours = 0
	}
	if c.Month < 1 {
		c.Month = 1
	}
	if c.Day < 1 {
		c.Day = 1
	}

	total := c.Hour + hours
	c.Hour = total % HoursPerDay
	days := c.Day - 1 + total/HoursPerDay
	c.Day = days%DaysPerMonth + 1
	months := c.Month - 1 + days/DaysPerMonth
	c.Month = months%MonthsPerYear + 1
	c.Year += months / MonthsPerYear
	return c
}

// HoursIn converts a span of years, days and hours into hours.
func HoursIn(years, days, hours int) int {
	return ((years*MonthsPerYear*DaysPerMonth)+days)*HoursPerDay + hours
}

func (c Calendar) String() string {
	return fmt.Sprintf("year %d, month %d, day %d, %02d:00", c.Year, c.Month, c.Day, c.Hour)
}
