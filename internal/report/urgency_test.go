package report

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		name   string
		due    *time.Time
		status Status
		want   Urgency
	}{
		{"no due date", nil, StatusTodo, UrgencyNone},
		{"done long overdue", at(-100 * 24 * time.Hour), StatusDone, UrgencyNone},
		{"done due soon", at(time.Hour), StatusDone, UrgencyNone},
		{"one nanosecond late", at(-time.Nanosecond), StatusTodo, UrgencyOverdue},
		{"one hour late", at(-time.Hour), StatusInProgress, UrgencyOverdue},
		{"blocked and late", at(-48 * time.Hour), StatusBlocked, UrgencyOverdue},
		{"due exactly now", at(0), StatusTodo, UrgencyCritical},
		{"due in 11h59m", at(12*time.Hour - time.Minute), StatusTodo, UrgencyCritical},
		{"due in 12h", at(12 * time.Hour), StatusTodo, UrgencyHigh},
		{"due in 23h", at(23 * time.Hour), StatusTodo, UrgencyHigh},
		{"due in 24h", at(24 * time.Hour), StatusTodo, UrgencyModerate},
		{"due in 71h", at(71 * time.Hour), StatusBlocked, UrgencyModerate},
		{"due in 72h", at(72 * time.Hour), StatusTodo, UrgencyLow},
		{"due in a month", at(30 * 24 * time.Hour), StatusTodo, UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyUrgency(tt.due, tt.status, testNow)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassifyUrgencyIgnoresZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	due := testNow.Add(-time.Minute).In(loc)

	if got := ClassifyUrgency(&due, StatusTodo, testNow); got != UrgencyOverdue {
		t.Errorf("Expected overdue, got %s", got)
	}
}

func TestUrgencyRank(t *testing.T) {
	for i := 1; i < len(urgencyOrder); i++ {
		if urgencyOrder[i].Rank() <= urgencyOrder[i-1].Rank() {
			t.Errorf("Expected %s to outrank %s", urgencyOrder[i], urgencyOrder[i-1])
		}
	}
	if UrgencyNone.Rank() != 0 {
		t.Errorf("Expected none to rank 0, got %d", UrgencyNone.Rank())
	}
	if Urgency("bogus").Rank() != -1 {
		t.Errorf("Expected unknown label to rank -1")
	}
}

func TestOverdueDays(t *testing.T) {
	tests := []struct {
		late time.Duration
		want int
	}{
		{time.Nanosecond, 1},
		{time.Hour, 1},
		{24 * time.Hour, 1},
		{25 * time.Hour, 2},
		{47 * time.Hour, 2},
		{49 * time.Hour, 3},
		{0, 0},
		{-time.Hour, 0},
	}

	for _, tt := range tests {
		if got := overdueDays(testNow.Add(-tt.late), testNow); got != tt.want {
			t.Errorf("%s late: expected %d days, got %d", tt.late, tt.want, got)
		}
	}
}

func TestClassifyUrgencyMonotone(t *testing.T) {
	due := testNow.Add(5 * 24 * time.Hour)
	prev := -1

	for now := testNow; now.Before(due.Add(48 * time.Hour)); now = now.Add(30 * time.Minute) {
		rank := ClassifyUrgency(&due, StatusInProgress, now).Rank()
		if rank < prev {
			t.Fatalf("urgency dropped from rank %d to %d at %v", prev, rank, now)
		}
		prev = rank
	}
	if prev != UrgencyOverdue.Rank() {
		t.Errorf("Expected to end overdue, got rank %d", prev)
	}
}
