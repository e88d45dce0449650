package clock_test

import (
	"testing"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/clock"
)

func TestRealClock_Now(t *testing.T) {
	clk := clock.New()
	before := time.Now()
	got := clk.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clk := clock.New()
	start := clk.Now()
	time.Sleep(20 * time.Millisecond)

	if elapsed := clk.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Since returned too little: %v", elapsed)
	}
}
