// Package stats computes the aggregate progress numbers shown on the
// monitor screen. Every function is pure and operates on the task slice
// the controller holds for the active month.
package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/kvsingh/neuralmon/internal/model"
)

// Stats is an aggregate over a day scope.
type Stats struct {
	Completed  int
	Total      int
	Percentage int
}

// DayPoint is one sample of the daily overview series.
type DayPoint struct {
	Day        int
	Percentage float64
}

// RankedTask pairs a task with its execution percentage for the top
// targets list.
type RankedTask struct {
	Task       model.Task
	Percentage int
}

// MonthKey identifies a calendar month with recorded activity.
type MonthKey struct {
	Year   int
	Month0 int
}

// roundPct rounds half-up to the nearest integer, the same rule the
// display applies everywhere. Inputs are never negative.
func roundPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(completed)/float64(total)*100 + 0.5))
}

// TaskPercentage is one task's completed-over-target ratio, rounded
// half-up and not capped at 100. A zero target yields 0.
func TaskPercentage(t model.Task) int {
	return roundPct(len(t.CompletedDays), t.Target)
}

// CompletionsOnDay counts the tasks that have day marked complete.
func CompletionsOnDay(tasks []model.Task, day int) int {
	n := 0
	for _, t := range tasks {
		if t.HasDay(day) {
			n++
		}
	}
	return n
}

// WeekStats aggregates over the given day filter. Total caps each task's
// contribution at min(target, len(days)) so a short target does not
// inflate the denominator.
func WeekStats(tasks []model.Task, days []int) Stats {
	inFilter := make(map[int]bool, len(days))
	for _, d := range days {
		inFilter[d] = true
	}
	var s Stats
	for _, t := range tasks {
		for _, d := range t.CompletedDays {
			if inFilter[d] {
				s.Completed++
			}
		}
		quota := t.Target
		if len(days) < quota {
			quota = len(days)
		}
		s.Total += quota
	}
	s.Percentage = roundPct(s.Completed, s.Total)
	return s
}

// MonthStats aggregates over the whole month: completed days against the
// sum of targets.
func MonthStats(tasks []model.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Completed += len(t.CompletedDays)
		s.Total += t.Target
	}
	s.Percentage = roundPct(s.Completed, s.Total)
	return s
}

// DailySeries returns the per-day completion share across all tasks,
// one decimal place, for days 1..daysInMonth.
func DailySeries(tasks []model.Task, daysInMonth int) []DayPoint {
	out := make([]DayPoint, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		pct := 0.0
		if len(tasks) > 0 {
			pct = float64(CompletionsOnDay(tasks, day)) / float64(len(tasks)) * 100
			pct = math.Round(pct*10) / 10
		}
		out = append(out, DayPoint{Day: day, Percentage: pct})
	}
	return out
}

// TopTargets ranks tasks by completed-over-target percentage,
// descending. Zero-target tasks rank at 0. The sort is stable: equal
// percentages keep their input order. The percentage is not capped at
// 100; a task toggled past a lowered target shows its real ratio.
func TopTargets(tasks []model.Task, n int) []RankedTask {
	ranked := make([]RankedTask, 0, len(tasks))
	for _, t := range tasks {
		ranked = append(ranked, RankedTask{Task: t, Percentage: TaskPercentage(t)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percentage > ranked[j].Percentage
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// MonthsWithData lists the months in which any task carries a non-zero
// target or at least one completed day, newest first.
func MonthsWithData(tasks []model.Task) []MonthKey {
	seen := make(map[MonthKey]bool)
	out := make([]MonthKey, 0)
	for _, t := range tasks {
		if t.Target <= 0 && len(t.CompletedDays) == 0 {
			continue
		}
		key := MonthKey{Year: t.Year, Month0: t.Month}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sortMonthKeysDesc(out)
	return out
}

// MonthsWithStories lists the months holding at least one non-blank
// story, newest first. Blank drafts are excluded.
func MonthsWithStories(stories []model.Story) []MonthKey {
	seen := make(map[MonthKey]bool)
	out := make([]MonthKey, 0)
	for _, s := range stories {
		if s.Blank() {
			continue
		}
		key := MonthKey{Year: s.CreatedAt.Year(), Month0: int(s.CreatedAt.Month()) - 1}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sortMonthKeysDesc(out)
	return out
}

// StoriesForMonth filters stories to one calendar month.
func StoriesForMonth(stories []model.Story, year, month0 int) []model.Story {
	out := make([]model.Story, 0, len(stories))
	for _, s := range stories {
		if s.CreatedAt.Year() == year && int(s.CreatedAt.Month())-1 == month0 {
			out = append(out, s)
		}
	}
	return out
}

func sortMonthKeysDesc(keys []MonthKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year > keys[j].Year
		}
		return keys[i].Month0 > keys[j].Month0
	})
}

// Label renders a MonthKey as "January 2024".
func (k MonthKey) Label() string {
	return time.Month(k.Month0+1).String() + " " + strconv.Itoa(k.Year)
}
