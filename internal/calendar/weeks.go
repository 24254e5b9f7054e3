// Package calendar builds the week-partitioned month grid shared by the
// calendar and daily-goals screens.
package calendar

import (
	"fmt"
	"time"
)

// WeekStart selects which weekday opens a row. The calendar grid uses
// Monday-first, the daily-goals table uses Sunday-first.
type WeekStart int

const (
	StartMonday WeekStart = iota
	StartSunday
)

// EmptySlot marks a padding cell in a week row.
const EmptySlot = 0

// Week is one row of the month grid: exactly seven slots, each either a
// 1-based day number or EmptySlot.
type Week struct {
	Label string
	Days  [7]int
}

// DayNames returns the seven column headers for the given convention.
func (s WeekStart) DayNames() [7]string {
	if s == StartSunday {
		return [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}
	return [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
}

// DaysInMonth returns the day count of month0 (0=January) in year.
// time.Date normalizes day 0 of the next month to the last day.
func DaysInMonth(year, month0 int) int {
	return time.Date(year, time.Month(month0+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildWeeks partitions 1..daysInMonth into week rows. The first week is
// left-padded up to the weekday of day 1 and the last week is
// right-padded to seven slots. daysInMonth must match the real day count
// of (year, month0); the caller computes it via DaysInMonth.
func BuildWeeks(daysInMonth, year, month0 int, start WeekStart) []Week {
	first := int(time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
	offset := first
	if start == StartMonday {
		if first == 0 {
			offset = 6
		} else {
			offset = first - 1
		}
	}

	weeks := make([]Week, 0, 6)
	day := 1
	for day <= daysInMonth {
		var w Week
		w.Label = fmt.Sprintf("WEEK %d", len(weeks)+1)
		slot := 0
		if len(weeks) == 0 {
			slot = offset
		}
		for ; slot < 7 && day <= daysInMonth; slot++ {
			w.Days[slot] = day
			day++
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// WeekDays returns the non-empty day numbers of a week row, used as the
// day filter for weekly aggregation.
func (w Week) WeekDays() []int {
	out := make([]int, 0, 7)
	for _, d := range w.Days {
		if d != EmptySlot {
			out = append(out, d)
		}
	}
	return out
}
