package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("WAT", 3600))
	clk := NewFixed(at)

	require.Equal(t, at.UTC(), clk.Now())
	require.NoError(t, clk.Sleep(context.Background(), time.Hour))
}

func TestSystemClockSleepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSystem().Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSystemClockSleepElapses(t *testing.T) {
	require.NoError(t, NewSystem().Sleep(context.Background(), time.Millisecond))
}
