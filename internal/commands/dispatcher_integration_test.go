package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type dispatchedRender struct {
	ID string
}

func (dispatchedRender) Type() string { return "markup.test.dispatched_render" }

func (dispatchedRender) Validate() error { return nil }

type exhaustedRender struct {
	ID string
}

func (exhaustedRender) Type() string { return "markup.test.exhausted_render" }

func (exhaustedRender) Validate() error { return nil }

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ dispatchedRender) error {
		attempts++
		if attempts == 1 {
			return errors.New("resolver unavailable")
		}
		return nil
	}, WithTimeout[dispatchedRender](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), dispatchedRender{ID: "post-1"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts (initial + retry), got %d", attempts)
	}
}

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ exhaustedRender) error {
		attempts++
		return errors.New("resolver down")
	}, WithTimeout[exhaustedRender](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), exhaustedRender{ID: "post-2"})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", attempts)
	}
}
