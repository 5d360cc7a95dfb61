package schedule

// =============================================================================
// DEFAULT STATUS POLICY - The floor every other layer can override
// =============================================================================

// StatusValue is a status/hours pair as produced by one precedence layer.
type StatusValue struct {
	Status string
	Hours  string
}

// DefaultFor returns the baseline status for a date when no rule or
// override applies: weekends are "Off", weekdays are "Scheduled".
func DefaultFor(d Day) StatusValue {
	if d.IsWeekend() {
		return StatusValue{Status: StatusOff}
	}
	return StatusValue{Status: StatusScheduled}
}
