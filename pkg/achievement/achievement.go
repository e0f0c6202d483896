// Package achievement defines the fixed achievement registry and the
// lifecycle of an achievement id: unearned -> queued (pending mint) ->
// minted (terminal). The pending queue has set semantics; minted ids
// never return to the queue.
package achievement

// CounterKind names the engine counter an achievement watches.
type CounterKind string

const (
	CounterFeedings CounterKind = "feedings"
	CounterPlays    CounterKind = "plays"
	CounterSleeps   CounterKind = "sleeps"
	CounterChats    CounterKind = "chats"
	CounterLevel    CounterKind = "level"
	CounterStreak   CounterKind = "streak"
)

// Achievement is one registry entry. Milestone is an exact value: the
// achievement unlocks when its counter crosses Milestone in a single
// engine increment.
type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Counter     CounterKind `json:"counter"`
	Milestone   int         `json:"milestone"`
}

// Crossed reports whether a counter moving from before to after crossed
// the milestone. For the engine's single-step increments this is
// equivalent to after == Milestone, but a range check cannot silently
// skip the milestone if a future change ever increments by more than 1.
func (a Achievement) Crossed(before, after int) bool {
	return before < a.Milestone && after >= a.Milestone
}

var registry = []Achievement{
	{ID: "caretaker_10", Name: "Caretaker", Description: "Feed your Moonling 10 times", Counter: CounterFeedings, Milestone: 10},
	{ID: "caretaker_50", Name: "Devoted Caretaker", Description: "Feed your Moonling 50 times", Counter: CounterFeedings, Milestone: 50},
	{ID: "caretaker_100", Name: "Master Caretaker", Description: "Feed your Moonling 100 times", Counter: CounterFeedings, Milestone: 100},
	{ID: "playful_10", Name: "Playful", Description: "Play with your Moonling 10 times", Counter: CounterPlays, Milestone: 10},
	{ID: "playful_50", Name: "Best Friends", Description: "Play with your Moonling 50 times", Counter: CounterPlays, Milestone: 50},
	{ID: "well_rested_10", Name: "Well Rested", Description: "Tuck your Moonling in 10 times", Counter: CounterSleeps, Milestone: 10},
	{ID: "chatterbox_25", Name: "Chatterbox", Description: "Chat with your Moonling 25 times", Counter: CounterChats, Milestone: 25},
	{ID: "level_5", Name: "Rising Star", Description: "Reach level 5", Counter: CounterLevel, Milestone: 5},
	{ID: "level_10", Name: "Lunar Legend", Description: "Reach level 10", Counter: CounterLevel, Milestone: 10},
	{ID: "streak_7", Name: "Week of Care", Description: "Keep a 7-day care streak", Counter: CounterStreak, Milestone: 7},
	{ID: "streak_30", Name: "Month of Care", Description: "Keep a 30-day care streak", Counter: CounterStreak, Milestone: 30},
}

// All returns the full registry in a stable order
func All() []Achievement {
	out := make([]Achievement, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a registry entry by id
func Lookup(id string) (Achievement, bool) {
	for _, a := range registry {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// ForCounter returns the registry entries watching one counter
func ForCounter(kind CounterKind) []Achievement {
	var out []Achievement
	for _, a := range registry {
		if a.Counter == kind {
			out = append(out, a)
		}
	}
	return out
}
