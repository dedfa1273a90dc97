// Package calendar flags upcoming dates with known economic impact.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWindow is how many days ahead Advisory scans, inclusive of today
const DefaultWindow = 14

// NoEvents is returned by EventList when the window holds nothing notable
const NoEvents = "No notable economic events."

// Event is a dated occurrence inside the scan window
type Event struct {
	Date      time.Time
	Name      string
	DaysAhead int
}

// Label returns "D-Day" for today or "D-n"
func (e Event) Label() string {
	if e.DaysAhead == 0 {
		return "D-Day"
	}
	return fmt.Sprintf("D-%d", e.DaysAhead)
}

type monthDay struct {
	month time.Month
	day   int
}

var fixedEvents = map[monthDay]string{
	{time.February, 14}: "Valentine's Day - confectionery and retail sales rise",
	{time.May, 5}:       "Children's Day (KR) - toys, theme parks and travel peak",
	{time.July, 4}:      "Independence Day (US) - US markets closed, travel and spending up",
	{time.October, 1}:   "Oktoberfest season - beverages and tourism",
	{time.November, 11}: "Singles' Day (CN) & Pepero Day (KR) - biggest e-commerce sales day",
	{time.December, 25}: "Christmas - climax of the holiday shopping season",
}

// lunarHolidays maps a year to the main day of Seollal and Chuseok (KST).
// Each holiday spans the eve, the day and the day after.
var lunarHolidays = map[int][2]string{
	2024: {"2024-02-10", "2024-09-17"},
	2025: {"2025-01-29", "2025-10-06"},
	2026: {"2026-02-17", "2026-09-25"},
	2027: {"2027-02-07", "2027-09-15"},
	2028: {"2028-01-27", "2028-10-03"},
	2029: {"2029-02-13", "2029-09-22"},
	2030: {"2030-02-03", "2030-09-12"},
	2031: {"2031-01-23", "2031-10-01"},
	2032: {"2032-02-11", "2032-09-19"},
	2033: {"2033-01-31", "2033-09-08"},
	2034: {"2034-02-19", "2034-09-27"},
	2035: {"2035-02-08", "2035-09-16"},
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// nthWeekday returns the nth occurrence of weekday in the given month
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// variableEvents returns the events whose date moves every year
func variableEvents(year int) map[time.Time]string {
	thanksgiving := nthWeekday(year, time.November, time.Thursday, 4)
	return map[time.Time]string{
		thanksgiving:                  "Thanksgiving (US) - US markets closed, consumer season begins",
		thanksgiving.AddDate(0, 0, 1): "Black Friday - largest retail and logistics day of the year",
		nthWeekday(year, time.November, time.Thursday, 3): "CSAT (KR) - market open delayed one hour, domestic consumption impact",
	}
}

// lunarEvents returns Seollal and Chuseok with their surrounding days
func lunarEvents(year int) map[time.Time]string {
	events := map[time.Time]string{}
	dates, ok := lunarHolidays[year]
	if !ok {
		return events
	}

	names := [2]string{
		"Seollal (Lunar New Year) - KR market closed, cash demand rises",
		"Chuseok - KR market closed, gift sets and retail",
	}
	for i, raw := range dates {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		for offset := -1; offset <= 1; offset++ {
			events[day.AddDate(0, 0, offset)] = names[i]
		}
	}
	return events
}

// Upcoming returns the events from today through today+days, in date order.
// Within a day, variable events precede fixed ones, which precede lunar ones.
func Upcoming(today time.Time, days int) []Event {
	today = dateOnly(today)

	variable := map[time.Time]string{}
	lunar := map[time.Time]string{}
	for _, year := range []int{today.Year(), today.AddDate(0, 0, days).Year()} {
		for d, name := range variableEvents(year) {
			variable[d] = name
		}
		for d, name := range lunarEvents(year) {
			lunar[d] = name
		}
	}

	var events []Event
	for i := 0; i <= days; i++ {
		target := today.AddDate(0, 0, i)
		if name, ok := variable[target]; ok {
			events = append(events, Event{Date: target, Name: name, DaysAhead: i})
		}
		if name, ok := fixedEvents[monthDay{target.Month(), target.Day()}]; ok {
			events = append(events, Event{Date: target, Name: name, DaysAhead: i})
		}
		if name, ok := lunar[target]; ok {
			events = append(events, Event{Date: target, Name: name, DaysAhead: i})
		}
	}
	return events
}

// Season maps a month to its northern-hemisphere season
func Season(month time.Month) string {
	switch {
	case month >= time.March && month <= time.May:
		return "Spring"
	case month >= time.June && month <= time.August:
		return "Summer"
	case month >= time.September && month <= time.November:
		return "Autumn"
	default:
		return "Winter"
	}
}

// EventList renders the events as "- [D-n] name" lines, or NoEvents
func EventList(events []Event) string {
	if len(events) == 0 {
		return NoEvents
	}
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = fmt.Sprintf("- [%s] %s", e.Label(), e.Name)
	}
	return strings.Join(lines, "\n")
}

// Advisory renders the seasonal block fed into the fusion stage
func Advisory(today time.Time) string {
	return fmt.Sprintf("[Economic Calendar Watch (Season: %s)]\n%s\n"+
		"(Instruction: weigh how these events move related equities such as retail, logistics and food, and overall market liquidity.)",
		Season(today.Month()), EventList(Upcoming(today, DefaultWindow)))
}
