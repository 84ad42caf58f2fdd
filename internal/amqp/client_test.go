package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"smartspend/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection error", errors.New("connection refused"), true},
		{"EOF error", errors.New("unexpected EOF"), true},
		{"broken pipe error", errors.New("broken pipe"), true},
		{"closed network connection error", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue", logger: log.Discard()}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("circuit should be closed initially")
		}
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("circuit should be open after max failures")
		}
	})

	t.Run("publish fails fast while open", func(t *testing.T) {
		err := client.PublishExpenseEvent(context.Background(), NewExpenseEvent("e1", ActionAdd))
		if !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("expected ErrCircuitOpen, got %v", err)
		}
	})

	t.Run("transitions to half-open after timeout", func(t *testing.T) {
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		if client.isCircuitOpen() {
			t.Error("circuit should be half-open after timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("state should be StateHalfOpen")
		}
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("state should be StateOpen")
		}
	})

	t.Run("success resets", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("success should close the circuit and reset failures")
		}
	})
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	client := &Client{logger: log.Discard()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishExpenseEvent(ctx, NewExpenseEvent("e1", ActionAdd)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestDispatch(t *testing.T) {
	client := &Client{logger: log.Discard()}
	good, _ := NewExpenseEvent("e1", ActionUpdate).ToJSON()

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		want       fakeAck
	}{
		{"handled", good, nil, fakeAck{acked: true}},
		{"handler error requeues", good, errors.New("boom"), fakeAck{nacked: true, requeued: true}},
		{"malformed json dropped", []byte(`{"id":`), nil, fakeAck{nacked: true}},
		{"unknown action dropped", []byte(`{"id":"e1","action":"rename"}`), nil, fakeAck{nacked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ack fakeAck
			var seen ExpenseEvent
			client.dispatch(context.Background(), tt.body, &ack, func(_ context.Context, ev ExpenseEvent) error {
				seen = ev
				return tt.handlerErr
			})
			if ack != tt.want {
				t.Fatalf("ack state = %+v, want %+v", ack, tt.want)
			}
			if tt.want.acked && (seen.ID != "e1" || seen.Action != ActionUpdate) {
				t.Fatalf("handler saw %+v", seen)
			}
		})
	}
}

func TestExpenseEventFromJSON(t *testing.T) {
	ev := ExpenseEvent{ID: "abc", Action: ActionDelete, Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	b, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := ExpenseEventFromJSON(b)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON: %v", err)
	}
	if got.ID != ev.ID || got.Action != ev.Action || !got.Timestamp.Equal(ev.Timestamp) {
		t.Fatalf("got %+v", got)
	}
	if _, err := ExpenseEventFromJSON([]byte(`{"action":"add"}`)); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("missing id should be malformed, got %v", err)
	}
}
