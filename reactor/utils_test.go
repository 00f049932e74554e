package reactor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeoutReturnsCoroutineResultWhenFaster(t *testing.T) {
	loop := NewEventLoop()
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		got, err := WithTimeout(ctx, 50*time.Millisecond, func(ctx context.Context) (int, error) {
			return 7, nil
		})
		if err != nil {
			return err
		}
		if got != 7 {
			t.Errorf("got %d, want 7", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestWithTimeoutFiresWhenCoroutineIsSlower(t *testing.T) {
	loop := NewEventLoop()
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		_, err := WithTimeout(ctx, 5*time.Millisecond, func(ctx context.Context) (int, error) {
			if err := Sleep(ctx, time.Hour); err != nil {
				return 0, err
			}
			return 1, nil
		})
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("err = %v, want ErrTimeout", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestWithTimeoutPropagatesCoroutineError(t *testing.T) {
	loop := NewEventLoop()
	wantErr := errors.New("boom")
	err := loop.Run(context.Background(), func(ctx context.Context) error {
		_, err := WithTimeout(ctx, 50*time.Millisecond, func(ctx context.Context) (int, error) {
			return 0, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
