package widget

import (
	"context"
	"testing"
)

func TestMachineLegalPaths(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   View
	}{
		{"cold start to onboarding", []string{EventOpen, EventOnboard}, ViewOnboarding},
		{"onboarding to chat", []string{EventOpen, EventOnboard, EventComplete, EventChat}, ViewChat},
		{"resume straight to chat", []string{EventResume}, ViewChat},
		{"bootstrap failure", []string{EventOpen, EventFail}, ViewError},
		{"recover after failure", []string{EventOpen, EventFail, EventRetry, EventOnboard}, ViewOnboarding},
		{"close from chat", []string{EventResume, EventClose}, ViewClosed},
		{"close from error", []string{EventOpen, EventFail, EventClose}, ViewClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine()
			for _, e := range tt.events {
				if err := m.Event(context.Background(), e); err != nil {
					t.Fatalf("event %q rejected in state %q: %v", e, m.Current(), err)
				}
			}
			if got := View(m.Current()); got != tt.want {
				t.Errorf("final view = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMachineRejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		setup  []string
		event  string
	}{
		{"onboard before open", nil, EventOnboard},
		{"chat before open", nil, EventChat},
		{"close while closed", nil, EventClose},
		{"retry without failure", []string{EventOpen}, EventRetry},
		{"resume while in chat", []string{EventResume}, EventResume},
		{"complete outside onboarding", []string{EventResume}, EventComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine()
			for _, e := range tt.setup {
				if err := m.Event(context.Background(), e); err != nil {
					t.Fatalf("setup event %q failed: %v", e, err)
				}
			}
			if err := m.Event(context.Background(), tt.event); err == nil {
				t.Errorf("event %q accepted in state %q, want rejection", tt.event, m.Current())
			}
		})
	}
}
