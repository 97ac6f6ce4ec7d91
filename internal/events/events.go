// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicExpenseCreated     = "expense.created"
	TopicSettlementReminder = "settlement.reminder"
)

// Publisher delivers events to subscribers. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Keyed events carry a partitioning key. Events of one group share a key so
// brokers that partition keep them in order.
type Keyed interface {
	Key() string
}

// ExpenseCreated is published after an expense and its splits are stored.
type ExpenseCreated struct {
	ExpenseID      string   `json:"expense_id"`
	GroupID        string   `json:"group_id"`
	Description    string   `json:"description"`
	Amount         string   `json:"amount"`
	PayerID        string   `json:"payer_id"`
	ParticipantIDs []string `json:"participant_ids"`
	CategoryID     string   `json:"category_id"`
	CreatedAt      int64    `json:"created_at"`
}

func (e ExpenseCreated) Key() string { return e.GroupID }

// SettlementReminder asks a debtor to pay a creditor.
type SettlementReminder struct {
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name"`
	FromUserID string `json:"from_user_id"`
	FromName   string `json:"from_name"`
	ToUserID   string `json:"to_user_id"`
	ToName     string `json:"to_name"`
	Amount     string `json:"amount"`
}

func (e SettlementReminder) Key() string { return e.GroupID }

// Envelope is the wire form of every event.
type Envelope struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps event in an envelope and returns its JSON along with the
// event's partitioning key, if any.
func Encode(topic string, event any) (key string, body []byte, err error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	body, err = json.Marshal(Envelope{
		ID:         uuid.New().String(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return "", nil, fmt.Errorf("marshal %s envelope: %w", topic, err)
	}
	if k, ok := event.(Keyed); ok {
		key = k.Key()
	}
	return key, body, nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error { return nil }

// Recorded is one event captured by a Recorder.
type Recorded struct {
	Topic string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
	// Err, when set, is returned from Publish and nothing is recorded.
	Err error
}

func (r *Recorder) Publish(_ context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Recorded{Topic: topic, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded, optionally filtered to topic.
func (r *Recorder) Events(topic string) []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Recorded
	for _, e := range r.events {
		if topic == "" || e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
