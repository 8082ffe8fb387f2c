package mealplan

import "time"

const isoDate = "2006-01-02"

// WeekWindow is the derived identity of a weekly plan. StartDate keys
// the server-side uniqueness constraint, so the derivation here is
// load-bearing.
type WeekWindow struct {
	Name      string
	StartDate string
	EndDate   string
}

// GenerateWeekDates derives the week window for a plan starting on the
// given date: the end date is six days later and the name is a
// "Jan 1 - Jan 7" style label. Month and year boundaries follow the
// calendar ("Dec 28 - Jan 3").
func GenerateWeekDates(start time.Time) WeekWindow {
	end := start.AddDate(0, 0, 6)
	return WeekWindow{
		Name:      start.Format("Jan 2") + " - " + end.Format("Jan 2"),
		StartDate: start.Format(isoDate),
		EndDate:   end.Format(isoDate),
	}
}
