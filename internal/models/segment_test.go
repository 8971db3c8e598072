package models

import "testing"

func TestValidSegmentTransition(t *testing.T) {
	tests := []struct {
		name string
		from SegmentStatus
		to   SegmentStatus
		want bool
	}{
		{"draft to pending", SegmentStatusDraft, SegmentStatusPending, true},
		{"draft to processing", SegmentStatusDraft, SegmentStatusProcessing, false},
		{"pending to processing", SegmentStatusPending, SegmentStatusProcessing, true},
		{"pending straight to completed", SegmentStatusPending, SegmentStatusCompleted, true},
		{"processing to completed", SegmentStatusProcessing, SegmentStatusCompleted, true},
		{"processing to failed", SegmentStatusProcessing, SegmentStatusFailed, true},
		{"processing back to pending", SegmentStatusProcessing, SegmentStatusPending, false},
		{"completed is terminal", SegmentStatusCompleted, SegmentStatusFailed, false},
		{"failed is terminal", SegmentStatusFailed, SegmentStatusPending, false},
		{"cancel in flight", SegmentStatusProcessing, SegmentStatusCancelled, true},
		{"cancel terminal", SegmentStatusCancelled, SegmentStatusPending, false},
		{"same status", SegmentStatusProcessing, SegmentStatusProcessing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSegmentTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidSegmentTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSegmentStatusTerminal(t *testing.T) {
	terminal := []SegmentStatus{SegmentStatusCompleted, SegmentStatusFailed, SegmentStatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	active := []SegmentStatus{SegmentStatusDraft, SegmentStatusPending, SegmentStatusProcessing}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
