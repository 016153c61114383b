package xp

// Badge is a fixed achievement earned at an XP threshold.
type Badge struct {
	ID        string
	Name      string
	Icon      string
	Desc      string
	Threshold int
	Earned    bool
}

var badgeSet = []Badge{
	{ID: "first", Name: "First Step", Icon: "🎯", Desc: "Complete your first task", Threshold: 10},
	{ID: "streak", Name: "On a Streak", Icon: "🔥", Desc: "Reach 50 XP", Threshold: 50},
	{ID: "centurion", Name: "Centurion", Icon: "⚡", Desc: "Reach 100 XP", Threshold: 100},
	{ID: "master", Name: "Master", Icon: "👑", Desc: "Reach 500 XP", Threshold: 500},
}

// Badges returns the full badge set with Earned set from the XP total.
func Badges(xp int) []Badge {
	out := make([]Badge, len(badgeSet))
	copy(out, badgeSet)
	for i := range out {
		out[i].Earned = xp >= out[i].Threshold
	}
	return out
}
