package mq

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

func newTestPublisher(t *testing.T, maxLen int64) (*StreamPublisher, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(client.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStreamPublisher(client, logger, StreamPublisherConfig{Stream: "scoreboard:events", MaxLen: maxLen}), mr
}

func TestStreamPublisher_Publish(t *testing.T) {
	pub, mr := newTestPublisher(t, 100)

	id, err := pub.Publish(context.Background(), map[string]string{"type": "stats", "uid": "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected message id")
	}

	entries, err := mr.Stream("scoreboard:events")
	if err != nil {
		t.Fatalf("read stream failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := map[string]string{}
	values := entries[0].Values
	for i := 0; i+1 < len(values); i += 2 {
		got[values[i]] = values[i+1]
	}
	if got["type"] != "stats" || got["uid"] != "u1" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestStreamPublisher_EmptyValues(t *testing.T) {
	pub, _ := newTestPublisher(t, 0)
	if _, err := pub.Publish(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty values")
	}
}
