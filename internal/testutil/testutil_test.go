package testutil

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	clk := NewFakeClock(start)

	if !clk.Now().Equal(start) {
		t.Errorf("Now = %v, want %v", clk.Now(), start)
	}

	clk.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !clk.Now().Equal(want) {
		t.Errorf("Now after Advance = %v, want %v", clk.Now(), want)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC))
	target := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("Now = %v, want %v", clk.Now(), target)
	}
}

func TestTestContext_HasDeadline(t *testing.T) {
	ctx := TestContext(t)
	if _, ok := ctx.Deadline(); !ok {
		t.Error("TestContext has no deadline")
	}
}
