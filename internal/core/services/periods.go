package services

import "time"

// Listening periods carve the day into the windows the original presets use.
// "Anytime" means period handling is off or the hour fell through.
const (
	periodMorning   = "Morning"
	periodAfternoon = "Afternoon"
	periodEvening   = "Evening"
	periodLateNight = "Late Night"
	periodAnytime   = "Anytime"
)

func currentPeriod(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		return periodMorning
	case h >= 12 && h < 17:
		return periodAfternoon
	case h >= 17 && h < 22:
		return periodEvening
	case h == 23 || h < 6:
		return periodLateNight
	default:
		return periodAnytime
	}
}

// hourInPeriod reports whether an hour of day belongs to the period. Anytime
// accepts every hour.
func hourInPeriod(hour int, period string) bool {
	switch period {
	case periodMorning:
		return hour >= 6 && hour < 12
	case periodAfternoon:
		return hour >= 12 && hour < 17
	case periodEvening:
		return hour >= 17 && hour < 22
	case periodLateNight:
		return hour == 23 || hour < 6
	default:
		return true
	}
}
