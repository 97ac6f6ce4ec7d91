package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	key, body, err := Encode(TopicExpenseCreated, ExpenseCreated{ExpenseID: "e1", GroupID: "g1", Amount: "10.00"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if key != "g1" {
		t.Errorf("key = %q, want g1", key)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if env.ID == "" || env.Topic != TopicExpenseCreated || env.OccurredAt.IsZero() {
		t.Errorf("unexpected envelope %+v", env)
	}
	var payload ExpenseCreated
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.ExpenseID != "e1" || payload.Amount != "10.00" {
		t.Errorf("unexpected payload %+v", payload)
	}

	if key, _, _ := Encode("misc", map[string]int{"a": 1}); key != "" {
		t.Errorf("unkeyed event got key %q", key)
	}
	if _, _, err := Encode("bad", make(chan int)); err == nil {
		t.Error("expected error for unencodable event")
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	_ = r.Publish(ctx, TopicExpenseCreated, ExpenseCreated{ExpenseID: "e1"})
	_ = r.Publish(ctx, TopicSettlementReminder, SettlementReminder{GroupID: "g1"})
	_ = r.Publish(ctx, TopicSettlementReminder, SettlementReminder{GroupID: "g2"})

	if n := len(r.Events("")); n != 3 {
		t.Errorf("recorded %d events, want 3", n)
	}
	if n := len(r.Events(TopicSettlementReminder)); n != 2 {
		t.Errorf("recorded %d reminders, want 2", n)
	}

	r.Err = errors.New("broker down")
	if err := r.Publish(ctx, TopicExpenseCreated, ExpenseCreated{}); err == nil {
		t.Error("expected configured error")
	}
	if n := len(r.Events("")); n != 3 {
		t.Errorf("failed publish was recorded")
	}
}
