package pet

// MoodState is the categorical label derived from the vitals.
// It is for UI and messaging only, never for gameplay decisions.
type MoodState string

const (
	MoodHappy   MoodState = "happy"
	MoodContent MoodState = "content"
	MoodSad     MoodState = "sad"
	MoodAngry   MoodState = "angry"
	MoodHungry  MoodState = "hungry"
	MoodSleepy  MoodState = "sleepy"
	MoodCalm    MoodState = "calm"
)

// criticalStat marks the band where a single axis dominates the mood state
const criticalStat = 1

// ClassifyMood derives a MoodState from the vitals. Critical hunger or
// energy overrides the weighted score; otherwise mood is weighted heaviest,
// then hunger, then energy.
func ClassifyMood(v Vitals) MoodState {
	v = v.Clamp()

	if v.Hunger <= criticalStat && v.Mood <= criticalStat {
		return MoodAngry
	}
	if v.Hunger <= criticalStat {
		return MoodHungry
	}
	if v.Energy <= criticalStat {
		return MoodSleepy
	}

	score := float64(v.Mood)*0.5 + float64(v.Hunger)*0.3 + float64(v.Energy)*0.2
	switch {
	case score >= 4.0:
		return MoodHappy
	case score >= 3.0:
		return MoodContent
	case score >= 2.0:
		return MoodCalm
	default:
		return MoodSad
	}
}

// MoodDescription maps a MoodState to a short sentence for the client
func MoodDescription(m MoodState) string {
	switch m {
	case MoodHappy:
		return "Your Moonling is glowing with joy!"
	case MoodContent:
		return "Your Moonling is content and comfortable."
	case MoodCalm:
		return "Your Moonling is calm, but could use some attention."
	case MoodSad:
		return "Your Moonling looks sad and lonely."
	case MoodAngry:
		return "Your Moonling is upset. Feeding would help a lot."
	case MoodHungry:
		return "Your Moonling's tummy is rumbling."
	case MoodSleepy:
		return "Your Moonling can barely keep its eyes open."
	default:
		return "Your Moonling is doing its own mysterious thing."
	}
}
