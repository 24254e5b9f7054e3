package update

import (
	"fmt"
	"strconv"
	"strings"
)

func dayCell(day, completions, taskCount int) string {
	if taskCount == 0 || completions == 0 {
		return strconv.Itoa(day)
	}
	return fmt.Sprintf("%d*%d", day, completions)
}

// firstLine trims s to its first line, capped at 48 runes so the cut
// never splits a multi-byte character.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if runes := []rune(s); len(runes) > 48 {
		s = string(runes[:48])
	}
	return s
}

// nextTaskNumber finds the highest "Task N" numeric suffix in use and
// returns N+1, so added rows continue the default naming sequence.
func nextTaskNumber(names []string) int {
	max := 0
	for _, name := range names {
		rest, ok := strings.CutPrefix(name, "Task ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}
