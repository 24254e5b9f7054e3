package stats

import (
	"testing"
	"time"

	"github.com/kvsingh/neuralmon/internal/model"
)

func task(name string, target int, days ...int) model.Task {
	if days == nil {
		days = []int{}
	}
	return model.Task{ID: name, Name: name, Target: target, CompletedDays: days, Month: 0, Year: 2024}
}

func TestCompletionsOnDay(t *testing.T) {
	tasks := []model.Task{
		task("a", 5, 1, 2, 3),
		task("b", 5, 2),
		task("c", 5),
	}
	if got := CompletionsOnDay(tasks, 2); got != 2 {
		t.Fatalf("day 2 completions = %d, want 2", got)
	}
	if got := CompletionsOnDay(tasks, 9); got != 0 {
		t.Fatalf("day 9 completions = %d, want 0", got)
	}
}

func TestWeekStatsCapsQuotaAtFilterSize(t *testing.T) {
	tasks := []model.Task{
		task("a", 10, 1, 2, 3), // quota min(10, 3) = 3
		task("b", 2, 1),        // quota min(2, 3) = 2
	}
	s := WeekStats(tasks, []int{1, 2, 3})
	if s.Completed != 4 {
		t.Fatalf("completed = %d, want 4", s.Completed)
	}
	if s.Total != 5 {
		t.Fatalf("total = %d, want 5", s.Total)
	}
	if s.Percentage != 80 {
		t.Fatalf("percentage = %d, want 80", s.Percentage)
	}
}

func TestWeekStatsIgnoresDaysOutsideFilter(t *testing.T) {
	tasks := []model.Task{task("a", 7, 1, 15, 20)}
	s := WeekStats(tasks, []int{14, 15, 16, 17, 18, 19, 20})
	if s.Completed != 2 {
		t.Fatalf("completed = %d, want 2", s.Completed)
	}
}

func TestMonthStats(t *testing.T) {
	tasks := []model.Task{
		task("a", 10, 1, 2, 3, 4),
		task("b", 5, 1),
	}
	s := MonthStats(tasks)
	if s.Completed != 5 || s.Total != 15 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Percentage != 33 { // 5/15 = 33.33 -> 33
		t.Fatalf("percentage = %d, want 33", s.Percentage)
	}
}

func TestPercentageZeroWhenTotalZero(t *testing.T) {
	if s := MonthStats(nil); s.Percentage != 0 {
		t.Fatalf("empty month percentage = %d, want 0", s.Percentage)
	}
	if s := WeekStats(nil, []int{1, 2, 3}); s.Percentage != 0 {
		t.Fatalf("empty week percentage = %d, want 0", s.Percentage)
	}
	if s := MonthStats([]model.Task{task("a", 0, 1)}); s.Percentage != 0 {
		t.Fatalf("zero-target percentage = %d, want 0", s.Percentage)
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	// 1/8 = 12.5 -> 13 under round-half-up.
	s := MonthStats([]model.Task{task("a", 8, 1)})
	if s.Percentage != 13 {
		t.Fatalf("percentage = %d, want 13", s.Percentage)
	}
}

func TestTopTargetsRanksDescending(t *testing.T) {
	tasks := []model.Task{
		task("low", 10, 1),             // 10%
		task("full", 5, 1, 2, 3, 4, 5), // 100%
		task("none", 0, 1, 2),          // target 0 -> 0%
		task("half", 4, 1, 2),          // 50%
	}
	ranked := TopTargets(tasks, 10)
	if len(ranked) != 4 {
		t.Fatalf("len = %d, want 4", len(ranked))
	}
	if ranked[0].Task.Name != "full" || ranked[0].Percentage != 100 {
		t.Fatalf("unexpected leader: %+v", ranked[0])
	}
	if ranked[1].Task.Name != "half" || ranked[2].Task.Name != "low" || ranked[3].Task.Name != "none" {
		t.Fatalf("unexpected order: %v %v %v", ranked[1].Task.Name, ranked[2].Task.Name, ranked[3].Task.Name)
	}
}

func TestTopTargetsStableOnTies(t *testing.T) {
	tasks := []model.Task{
		task("first", 4, 1, 2),           // 50%
		task("second", 2, 1),             // 50%
		task("third", 10, 1, 2, 3, 4, 5), // 50%
	}
	ranked := TopTargets(tasks, 10)
	if ranked[0].Task.Name != "first" || ranked[1].Task.Name != "second" || ranked[2].Task.Name != "third" {
		t.Fatalf("tie order not stable: %v %v %v", ranked[0].Task.Name, ranked[1].Task.Name, ranked[2].Task.Name)
	}
}

func TestTopTargetsLimitAndOverCompletion(t *testing.T) {
	tasks := make([]model.Task, 0, 12)
	for i := 0; i < 12; i++ {
		tasks = append(tasks, task("t", 1, 1))
	}
	if got := TopTargets(tasks, 10); len(got) != 10 {
		t.Fatalf("limit not applied: %d", len(got))
	}

	// Target lowered after six days were marked: ratio stays uncapped.
	over := TopTargets([]model.Task{task("over", 5, 1, 2, 3, 4, 5, 6)}, 10)
	if over[0].Percentage != 120 {
		t.Fatalf("over-complete percentage = %d, want 120", over[0].Percentage)
	}

	exact := TopTargets([]model.Task{task("exact", 5, 1, 3, 5, 7, 9)}, 10)
	if exact[0].Percentage != 100 {
		t.Fatalf("exact percentage = %d, want 100", exact[0].Percentage)
	}
}

func TestDailySeries(t *testing.T) {
	tasks := []model.Task{
		task("a", 3, 1, 2),
		task("b", 3, 1),
		task("c", 3),
	}
	series := DailySeries(tasks, 3)
	if len(series) != 3 {
		t.Fatalf("len = %d, want 3", len(series))
	}
	if series[0].Percentage != 66.7 {
		t.Fatalf("day 1 = %v, want 66.7", series[0].Percentage)
	}
	if series[1].Percentage != 33.3 || series[2].Percentage != 0 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if got := DailySeries(nil, 2); got[0].Percentage != 0 {
		t.Fatalf("empty task series should be zero: %+v", got)
	}
}

func TestMonthsWithDataNewestFirst(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Name: "a", Target: 1, Month: 0, Year: 2024},
		{ID: "2", Name: "b", Target: 0, CompletedDays: []int{3}, Month: 11, Year: 2023},
		{ID: "3", Name: "c", Target: 0, Month: 5, Year: 2024}, // no data
		{ID: "4", Name: "d", Target: 2, Month: 0, Year: 2024}, // dup month
	}
	got := MonthsWithData(tasks)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0] != (MonthKey{Year: 2024, Month0: 0}) || got[1] != (MonthKey{Year: 2023, Month0: 11}) {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Label() != "January 2024" {
		t.Fatalf("label = %q", got[0].Label())
	}
}

func TestMonthsWithStoriesSkipsBlankDrafts(t *testing.T) {
	jan := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	stories := []model.Story{
		{ID: "s1", UserID: "u", Content: "  ", CreatedAt: feb},
		{ID: "s2", UserID: "u", Content: "kept going", CreatedAt: jan},
	}
	got := MonthsWithStories(stories)
	if len(got) != 1 || got[0].Month0 != 0 {
		t.Fatalf("unexpected months: %+v", got)
	}
}

func TestStoriesForMonth(t *testing.T) {
	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	stories := []model.Story{
		{ID: "s1", CreatedAt: jan},
		{ID: "s2", CreatedAt: feb},
	}
	got := StoriesForMonth(stories, 2024, 0)
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("unexpected stories: %+v", got)
	}
}

func TestTaskPercentage(t *testing.T) {
	if got := TaskPercentage(task("a", 5, 1, 3, 5, 7, 9)); got != 100 {
		t.Fatalf("5/5 percentage = %d, want 100", got)
	}
	if got := TaskPercentage(task("b", 3, 1, 2, 3, 4)); got != 133 {
		t.Fatalf("over-complete percentage = %d, want 133", got)
	}
	if got := TaskPercentage(task("c", 0, 1)); got != 0 {
		t.Fatalf("zero-target percentage = %d, want 0", got)
	}
}
