package report

import "time"

type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyLow      Urgency = "low"
	UrgencyModerate Urgency = "moderate"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
	UrgencyOverdue  Urgency = "overdue"
)

// urgencyOrder lists labels from least to most urgent.
var urgencyOrder = []Urgency{UrgencyNone, UrgencyLow, UrgencyModerate, UrgencyHigh, UrgencyCritical, UrgencyOverdue}

// urgencyTiers maps time-until-due to a label. Each tier applies while the
// remaining time is below its bound; anything past the last bound is low.
var urgencyTiers = []struct {
	below time.Duration
	label Urgency
}{
	{0, UrgencyOverdue},
	{12 * time.Hour, UrgencyCritical},
	{24 * time.Hour, UrgencyHigh},
	{72 * time.Hour, UrgencyModerate},
}

// ClassifyUrgency labels a task by how close its due date is to now.
// Done tasks and tasks without a due date are never urgent.
func ClassifyUrgency(due *time.Time, status Status, now time.Time) Urgency {
	if status == StatusDone || due == nil {
		return UrgencyNone
	}
	delta := due.Sub(now)
	for _, tier := range urgencyTiers {
		if delta < tier.below {
			return tier.label
		}
	}
	return UrgencyLow
}

// Rank orders labels by urgency, none being 0.
func (u Urgency) Rank() int {
	for i, label := range urgencyOrder {
		if label == u {
			return i
		}
	}
	return -1
}

// overdueDays counts started days past the due date, so any lateness is at
// least one day.
func overdueDays(due time.Time, now time.Time) int {
	late := now.Sub(due)
	if late <= 0 {
		return 0
	}
	return int((late + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
}
