package service

// Milestones is the ascending table of streak lengths that unlock a badge.
var Milestones = []int{3, 7, 14, 30, 60, 90, 180, 365}

// MilestonesCrossed returns the thresholds in (prevStreak, newStreak]. A
// backfill that jumps several days still yields each crossed threshold
// exactly once.
func MilestonesCrossed(prevStreak, newStreak int) []int {
	var crossed []int
	for _, m := range Milestones {
		if m > prevStreak && m <= newStreak {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

// computeStreaks rebuilds current/longest streaks from a sorted, de-duplicated
// ascending date list. The current streak is the run ending at the newest
// date. Used only on the out-of-order fallback path.
func computeStreaks(dates []string, yesterdayOf func(string) string) (current, longest int) {
	run := 0
	var prev string
	for _, d := range dates {
		if run > 0 && prev == yesterdayOf(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return run, longest
}
