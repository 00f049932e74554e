package reactor

import (
	"context"
	"testing"
	"time"
)

func TestSpawnTaskReturnsResult(t *testing.T) {
	loop := NewEventLoop()
	var got int
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		task := SpawnTask(ctx, func(ctx context.Context) (int, error) {
			return 42, nil
		})
		v, err := task.Await(ctx)
		if err != nil {
			return err
		}
		got = v
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestTimerOrdering(t *testing.T) {
	// spec §8: "the order of two timers with t1 < t2 is strictly f1 then f2".
	loop := NewEventLoop()
	var order []int
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		task1 := SpawnTask(ctx, func(ctx context.Context) (any, error) {
			if err := Sleep(ctx, 5*time.Millisecond); err != nil {
				return nil, err
			}
			order = append(order, 1)
			return nil, nil
		})
		task2 := SpawnTask(ctx, func(ctx context.Context) (any, error) {
			if err := Sleep(ctx, 20*time.Millisecond); err != nil {
				return nil, err
			}
			order = append(order, 2)
			return nil, nil
		})
		if _, err := task1.Await(ctx); err != nil {
			return err
		}
		if _, err := task2.Await(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("timer order = %v, want [1 2]", order)
	}
}

func TestSleepNeverFiresEarly(t *testing.T) {
	loop := NewEventLoop()
	start := time.Now()
	const delay = 15 * time.Millisecond
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		return Sleep(ctx, delay)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Sleep returned after %v, want >= %v", elapsed, delay)
	}
}

func TestCallbackCancelRemovesFromQueue(t *testing.T) {
	loop := NewEventLoop()
	ran := false
	cb := loop.ScheduleCallback(time.Hour, func() { ran = true })
	if !cb.Cancel() {
		t.Fatal("Cancel on a scheduled callback should return true")
	}
	if cb.Cancel() {
		t.Error("Cancel on an already-cancelled callback should return false")
	}
	if ran {
		t.Error("cancelled callback should not have run")
	}
}
