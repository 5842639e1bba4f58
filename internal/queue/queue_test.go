package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(2)
	msg, err := NewMessage(TypePhotoCleanup, PhotoCleanup{Key: "attendance-photos/a/b.jpg"})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case got := <-out:
		if got.Type != TypePhotoCleanup {
			t.Errorf("type = %q, want %q", got.Type, TypePhotoCleanup)
		}
		var payload PhotoCleanup
		if err := json.Unmarshal(got.Body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if payload.Key != "attendance-photos/a/b.jpg" {
			t.Errorf("key = %q", payload.Key)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()

	msg, _ := NewMessage(TypeProfileSync, ProfileSync{UserID: "u1", Status: "Verified"})
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Buffer full; a cancelled context must unblock the second publish.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := q.Publish(cancelled, msg); err == nil {
		t.Fatal("expected publish on full queue with cancelled context to fail")
	}
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	out, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	cancel()

	select {
	case _, open := <-out:
		if open {
			t.Fatal("expected channel to close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNewMessageRejectsUnmarshalable(t *testing.T) {
	if _, err := NewMessage("bad", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}
