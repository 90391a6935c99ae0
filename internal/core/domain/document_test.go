package domain

import "testing"

func TestDocumentStatus_Valid(t *testing.T) {
	valid := []DocumentStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if DocumentStatus("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestDocumentStatus_Terminal(t *testing.T) {
	if StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Error("pending and processing must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}

func TestDocumentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusFailed, StatusProcessing, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
