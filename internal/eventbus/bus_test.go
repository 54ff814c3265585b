package eventbus

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var received []TaskEvent
	unsubscribe := bus.Subscribe(TaskEventDone, func(ctx context.Context, event TaskEvent) error {
		received = append(received, event)
		return nil
	})
	defer unsubscribe()

	event := TaskEvent{Type: TaskEventDone, Kind: "aiAnalysis", Key: "__analysis__"}
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Key != "__analysis__" {
		t.Errorf("unexpected key: %s", received[0].Key)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsubscribe := bus.Subscribe(TaskEventFailed, func(ctx context.Context, event TaskEvent) error {
		count++
		return nil
	})

	bus.Publish(context.Background(), TaskEvent{Type: TaskEventFailed})
	unsubscribe()
	bus.Publish(context.Background(), TaskEvent{Type: TaskEventFailed})

	if count != 1 {
		t.Errorf("expected 1 delivery after unsubscribe, got %d", count)
	}
}

// 订阅类型不匹配的事件不投递
func TestBusTypeIsolation(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(TaskEventDone, func(ctx context.Context, event TaskEvent) error {
		count++
		return nil
	})

	bus.Publish(context.Background(), TaskEvent{Type: TaskEventFailed})
	if count != 0 {
		t.Errorf("expected no delivery, got %d", count)
	}
}

func TestBusHandlerErrorsJoined(t *testing.T) {
	bus := NewBus()

	errBoom := errors.New("boom")
	bus.Subscribe(TaskEventDone, func(ctx context.Context, event TaskEvent) error {
		return errBoom
	})
	bus.Subscribe(TaskEventDone, func(ctx context.Context, event TaskEvent) error {
		return nil
	})

	err := bus.Publish(context.Background(), TaskEvent{Type: TaskEventDone})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected joined error to contain boom, got %v", err)
	}
}

func TestBusNilHandler(t *testing.T) {
	bus := NewBus()
	unsubscribe := bus.Subscribe(TaskEventDone, nil)
	unsubscribe()

	if err := bus.Publish(context.Background(), TaskEvent{Type: TaskEventDone}); err != nil {
		t.Errorf("Publish with no handlers should succeed: %v", err)
	}
}
