package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{DealStatusDraft, DealStatusActive, true},
		{DealStatusDraft, DealStatusFunding, true},
		{DealStatusActive, DealStatusFunding, true},
		{DealStatusFunding, DealStatusFunded, true},
		{DealStatusFunded, DealStatusInReview, true},
		{DealStatusInReview, DealStatusCompleted, true},

		// Dispute paths
		{DealStatusFunded, DealStatusDisputed, true},
		{DealStatusInReview, DealStatusDisputed, true},
		{DealStatusDisputed, DealStatusCompleted, true},
		{DealStatusDisputed, DealStatusRefunded, true},

		// Invalid transitions
		{DealStatusDraft, DealStatusFunded, false},
		{DealStatusDraft, DealStatusCompleted, false},
		{DealStatusActive, DealStatusDisputed, false},
		{DealStatusFunding, DealStatusCompleted, false},
		{DealStatusCompleted, DealStatusDisputed, false},
		{DealStatusCompleted, DealStatusRefunded, false},
		{DealStatusRefunded, DealStatusCompleted, false},
		{"nonexistent", DealStatusFunding, false},
		{DealStatusDraft, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		DealStatusDraft, DealStatusActive, DealStatusFunding, DealStatusFunded,
		DealStatusInReview, DealStatusCompleted, DealStatusDisputed, DealStatusRefunded,
	}

	for _, status := range allStatuses {
		if _, ok := ValidDealTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidDealTransitions map", status)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{DealStatusCompleted, DealStatusRefunded}
	for _, status := range terminal {
		transitions := ValidDealTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestSettableStatusesExcludeDisputeStates(t *testing.T) {
	if IsSettableStatus(DealStatusDisputed) {
		t.Errorf("disputed must not be settable via status override")
	}
	if IsSettableStatus(DealStatusRefunded) {
		t.Errorf("refunded must not be settable via status override")
	}
	for _, s := range SettableDealStatuses {
		if !IsDealStatus(s) {
			t.Errorf("settable status %q is not a known deal status", s)
		}
	}
}
