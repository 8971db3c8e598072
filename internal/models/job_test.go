package models

import "testing"

func TestValidJobTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"draft to script_pending", JobStatusDraft, JobStatusScriptPending, true},
		{"script_pending to script_ready", JobStatusScriptPending, JobStatusScriptReady, true},
		{"skip stages forward", JobStatusDraft, JobStatusAssembly, true},
		{"same status", JobStatusAssembly, JobStatusAssembly, true},
		{"backwards", JobStatusAssembly, JobStatusScriptReady, false},
		{"completed is final", JobStatusCompleted, JobStatusDraft, false},
		{"completed cannot error", JobStatusCompleted, JobStatusError, false},
		{"any active stage to error", JobStatusSegmentsGenerating, JobStatusError, true},
		{"any active stage to paused", JobStatusScriptReady, JobStatusPaused, true},
		{"paused resumes anywhere", JobStatusPaused, JobStatusSegmentsGenerating, true},
		{"error resumes anywhere", JobStatusError, JobStatusScriptPending, true},
		{"paused to unknown", JobStatusPaused, JobStatus("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidJobTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidJobTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidPillar(t *testing.T) {
	for _, pillar := range ContentPillars {
		if !ValidPillar(pillar) {
			t.Errorf("ValidPillar(%q) = false, want true", pillar)
		}
	}
	if ValidPillar("gaming") {
		t.Error("ValidPillar(\"gaming\") = true, want false")
	}
}
