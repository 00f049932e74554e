package reactor

import (
	"context"
	"errors"
	"testing"
)

func TestPromiseResultBeforeReady(t *testing.T) {
	p := NewPromise[int]()
	if _, err := p.Result(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Result() before Resolve = %v, want ErrNotReady", err)
	}
}

func TestPromiseResolveBeforeWaitIsLegal(t *testing.T) {
	p := NewPromise[int]()
	// spec §8: "resolve before any wait is legal and does not call back".
	p.Resolve(7, nil)
	v, err := p.Result()
	if err != nil || v != 7 {
		t.Errorf("Result() = (%d, %v), want (7, nil)", v, err)
	}
}

func TestPromiseResolveAfterWaitInvokesContinuation(t *testing.T) {
	p := NewPromise[int]()
	called := 0
	var gotValue int
	p.AddResultCallback(func(v int, err error) {
		called++
		gotValue = v
	})
	p.Resolve(9, nil)
	if called != 1 {
		t.Errorf("continuation invoked %d times, want exactly 1", called)
	}
	if gotValue != 9 {
		t.Errorf("gotValue = %d, want 9", gotValue)
	}
}

func TestPromiseDoubleResolveIsNoOp(t *testing.T) {
	p := NewPromise[int]()
	p.Resolve(1, nil)
	p.Resolve(2, nil)
	v, _ := p.Result()
	if v != 1 {
		t.Errorf("second Resolve overwrote the first: got %d, want 1", v)
	}
}

func TestTaskCancelBeforeFirstStepReturnsError(t *testing.T) {
	loop := NewEventLoop()
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		inner := NewPromise[any]()
		task := SpawnTask(ctx, func(ctx context.Context) (any, error) {
			return inner.Await(ctx)
		})
		task.Cancel(errors.New("stop"))
		_, err := task.Await(ctx)
		if err == nil {
			t.Error("expected an error after cancelling the task")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestShieldSettlesWithWrappedResult(t *testing.T) {
	loop := NewEventLoop()
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		p := NewPromise[int]()
		shielded := p.Shield()
		p.Resolve(5, nil)
		v, err := shielded.Await(ctx)
		if err != nil || v != 5 {
			t.Errorf("shielded.Await() = (%d, %v), want (5, nil)", v, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
