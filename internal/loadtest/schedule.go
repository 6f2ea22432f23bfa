package loadtest

import (
	"time"

	"github.com/proleague/league-loadtest/internal/config"
)

// Schedule gives the number of virtual users that should be running at any
// point of a run.
type Schedule struct {
	scenario config.ScenarioConfig
}

// TargetAt returns how many VUs should be active after elapsed. It is 0
// once the schedule is over.
func (s Schedule) TargetAt(elapsed time.Duration) int {
	if elapsed < 0 || elapsed >= s.Duration() {
		return 0
	}
	if s.scenario.Executor != config.ExecutorRampingVUs {
		return s.scenario.VUs
	}

	from := s.scenario.StartVUs
	for _, st := range s.scenario.Stages {
		if elapsed < st.Duration {
			frac := float64(elapsed) / float64(st.Duration)
			return from + int(float64(st.Target-from)*frac)
		}
		elapsed -= st.Duration
		from = st.Target
	}
	return 0
}

// Duration is the length of the schedule, graceful stop excluded.
func (s Schedule) Duration() time.Duration {
	return s.scenario.TotalDuration()
}

// MaxVUs is the number of VU goroutines the schedule needs.
func (s Schedule) MaxVUs() int {
	return s.scenario.MaxVUs()
}
