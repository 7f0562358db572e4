package jobs

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// ValidateSchedule reports whether a schedule is well-formed for its
// kind, the same checks cron.Service ran before persisting a job.
func ValidateSchedule(s Schedule) error {
	switch s.Kind {
	case "at":
		if s.AtMs == nil {
			return fmt.Errorf("schedule kind=at requires atMs")
		}
	case "every":
		if s.EveryMs == nil || *s.EveryMs <= 0 {
			return fmt.Errorf("schedule kind=every requires a positive everyMs")
		}
	case "cron":
		if s.Expr == "" {
			return fmt.Errorf("schedule kind=cron requires expr")
		}
		if !gronx.New().IsValid(s.Expr) {
			return fmt.Errorf("schedule kind=cron: invalid expression %q", s.Expr)
		}
	default:
		return fmt.Errorf("unknown schedule kind %q", s.Kind)
	}
	return nil
}

// NextRunAfter computes the next run timestamp (unix-ms) strictly after
// after, for the three schedule kinds goclaw's cron.Service supports.
// Unknown kinds or invalid expressions return (0, false).
func NextRunAfter(s Schedule, after time.Time) (int64, bool) {
	switch s.Kind {
	case "at":
		if s.AtMs == nil {
			return 0, false
		}
		at := time.UnixMilli(*s.AtMs)
		if at.After(after) {
			return *s.AtMs, true
		}
		return 0, false

	case "every":
		if s.EveryMs == nil || *s.EveryMs <= 0 {
			return 0, false
		}
		return after.Add(time.Duration(*s.EveryMs) * time.Millisecond).UnixMilli(), true

	case "cron":
		if s.Expr == "" {
			return 0, false
		}
		next, err := gronx.NextTickAfter(s.Expr, after, false)
		if err != nil {
			return 0, false
		}
		return next.UnixMilli(), true

	default:
		return 0, false
	}
}
