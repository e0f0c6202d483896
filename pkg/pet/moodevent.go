package pet

import (
	"time"
)

const (
	MoodEventIntensityMin = 1
	MoodEventIntensityMax = 5
)

// MoodEvent is an ephemeral, self-expiring mood record. An event is active
// while now - Timestamp < Duration; expired events are pruned on the next
// read rather than deleted by a timer.
type MoodEvent struct {
	Type      string `json:"type"`
	Intensity int    `json:"intensity"` // 1-5
	Duration  int    `json:"duration"`  // minutes
	Cause     string `json:"cause,omitempty"`
	Timestamp int64  `json:"timestamp"` // ms since epoch
}

// NewMoodEvent creates an event starting at now, with intensity clamped
func NewMoodEvent(eventType string, intensity, durationMinutes int, cause string, now time.Time) MoodEvent {
	if intensity < MoodEventIntensityMin {
		intensity = MoodEventIntensityMin
	}
	if intensity > MoodEventIntensityMax {
		intensity = MoodEventIntensityMax
	}
	return MoodEvent{
		Type:      eventType,
		Intensity: intensity,
		Duration:  durationMinutes,
		Cause:     cause,
		Timestamp: now.UnixMilli(),
	}
}

// ActiveAt reports whether the event is still active at the given time
func (e MoodEvent) ActiveAt(now time.Time) bool {
	elapsed := now.UnixMilli() - e.Timestamp
	return elapsed >= 0 && elapsed < int64(e.Duration)*time.Minute.Milliseconds()
}

// PruneMoodEvents returns only the events still active at now, preserving order
func PruneMoodEvents(events []MoodEvent, now time.Time) []MoodEvent {
	active := make([]MoodEvent, 0, len(events))
	for _, e := range events {
		if e.ActiveAt(now) {
			active = append(active, e)
		}
	}
	return active
}
