package scheduler

import (
	"time"

	"drop-auction/internal/models"
)

// Policy controls how often a countdown is re-checked
type Policy struct {
	// FarInterval is the delay while more than NearThreshold seconds remain.
	FarInterval time.Duration
	// NearInterval is the delay once NearThreshold or fewer seconds remain.
	NearInterval  time.Duration
	NearThreshold int64
}

// DefaultPolicy checks every 2s, then every 1s for the last 10 seconds
func DefaultPolicy() Policy {
	return Policy{
		FarInterval:   2 * time.Second,
		NearInterval:  time.Second,
		NearThreshold: 10,
	}
}

// Action is what a watcher does after a tick
type Action int

const (
	Reschedule Action = iota
	Expire
)

func (a Action) String() string {
	if a == Expire {
		return "expire"
	}
	return "reschedule"
}

// Decision is the outcome of evaluating a countdown at one instant
type Decision struct {
	Action           Action
	Delay            time.Duration
	RemainingSeconds int64
}

// Tick decides whether the countdown has expired at now, and if not how long
// to wait before looking again.
func Tick(timer models.CountdownTimer, now time.Time, policy Policy) Decision {
	if !now.Before(timer.DeadlineAt) {
		return Decision{Action: Expire}
	}

	remaining := models.RemainingSeconds(timer.DeadlineAt, now)
	delay := policy.NearInterval
	if remaining > policy.NearThreshold {
		delay = policy.FarInterval
	}
	return Decision{Action: Reschedule, Delay: delay, RemainingSeconds: remaining}
}
