package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Action names the kind of change an ExpenseEvent reports.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var ErrMalformedEvent = errors.New("malformed expense event")

// ExpenseEvent is a lightweight change notification. Consumers read the
// current state from the store rather than from the message.
type ExpenseEvent struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(id string, action Action) ExpenseEvent {
	return ExpenseEvent{ID: id, Action: action, Timestamp: time.Now().UTC()}
}

func (a Action) IsValid() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and checks an event body.
func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ExpenseEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.ID == "" || !ev.Action.IsValid() {
		return ExpenseEvent{}, fmt.Errorf("%w: id %q action %q", ErrMalformedEvent, ev.ID, ev.Action)
	}
	return ev, nil
}
