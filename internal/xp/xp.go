// Package xp implements the experience-point bookkeeping behind task
// completion: a fixed award per completed task and a fixed-size level
// bucket derived purely from the XP total.
package xp

// AwardPerTask is how much XP completing one task is worth.
const AwardPerTask = 10

// PerLevel is the bucket size of the level formula.
const PerLevel = 100

// Level derives the level from an XP total: floor(xp/100) + 1.
// Level is never stored independently of this formula.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/PerLevel + 1
}

// Progress returns how far into the current level the XP total is,
// in the range [0, PerLevel).
func Progress(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp % PerLevel
}

// Award returns the XP total after completing one task.
func Award(xp int) int {
	return xp + AwardPerTask
}

// Deduct returns the XP total after un-completing a task. The deduction
// is skipped entirely when the total is below the award amount, so XP
// never goes negative.
func Deduct(xp int) (int, bool) {
	if xp < AwardPerTask {
		return xp, false
	}
	return xp - AwardPerTask, true
}
