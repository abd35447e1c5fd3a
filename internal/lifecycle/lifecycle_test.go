package lifecycle

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"active to pending", Active, ShutdownPending, true},
		{"pending to verified", ShutdownPending, ShutdownVerified, true},
		{"active straight to verified", Active, ShutdownVerified, true},
		{"same state is a no-op", ShutdownPending, ShutdownPending, true},
		{"verified to active", ShutdownVerified, Active, false},
		{"verified to pending", ShutdownVerified, ShutdownPending, false},
		{"pending to active", ShutdownPending, Active, false},
		{"unknown target", Active, Status("retired"), false},
		{"unknown source", Status(""), Active, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCheckTransitionReturnsTypedError(t *testing.T) {
	err := CheckTransition(ShutdownVerified, Active)
	if err == nil {
		t.Fatal("expected an error for a regressive transition")
	}

	var ite *IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected *IllegalTransitionError, got %T", err)
	}
	if ite.From != ShutdownVerified || ite.To != Active {
		t.Errorf("unexpected transition in error: %s -> %s", ite.From, ite.To)
	}

	if err := CheckTransition(Active, ShutdownVerified); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestRankIsMonotonicAlongAnySequence(t *testing.T) {
	requests := []Status{ShutdownPending, Active, ShutdownVerified, ShutdownPending, Active, ShutdownVerified}
	current := Initial

	for _, next := range requests {
		before := Rank(current)
		if CanTransition(current, next) {
			current = next
		}
		if Rank(current) < before {
			t.Fatalf("rank decreased from %d to %d", before, Rank(current))
		}
	}

	if current != ShutdownVerified {
		t.Errorf("expected to end at %s, got %s", ShutdownVerified, current)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{"active", Active, false},
		{" Shutdown_Pending ", ShutdownPending, false},
		{"SHUTDOWN_VERIFIED", ShutdownVerified, false},
		{"decommissioned", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTally(t *testing.T) {
	sum := Tally([]Status{Active, ShutdownVerified})
	if sum.Verified != 1 || sum.Pending != 1 || sum.Total != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	sum = Tally([]Status{Active, ShutdownPending, ShutdownPending, ShutdownVerified, ShutdownVerified})
	if sum.Verified+sum.Pending != sum.Total {
		t.Errorf("verified + pending != total: %+v", sum)
	}
	if sum.Active != 1 || sum.ShutdownPending != 2 {
		t.Errorf("unexpected breakdown: %+v", sum)
	}

	if empty := Tally(nil); empty != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}
