package session

import "time"

const maxBackoff = 30 * time.Second

// NextRefreshDelay doubles base for each consecutive failure, capped at 30s.
// A base above the cap is never shortened.
func NextRefreshDelay(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	limit := max(base, maxBackoff)
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= limit {
			return limit
		}
	}
	return delay
}
