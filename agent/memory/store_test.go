package memory

import (
	"context"
	"testing"

	contractx "github.com/obinna/neargent/agent/contract"
)

func TestNewBunStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := NewBunStore(Config{}); err == nil {
		t.Fatal("NewBunStore() accepted empty dsn")
	}
}

func TestNoopStore(t *testing.T) {
	t.Parallel()

	store := Noop{}
	if err := store.AppendTurn(context.Background(), "ctx-1", contractx.Turn{Role: "user", Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	turns, err := store.RecentTurns(context.Background(), "ctx-1", 10)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("RecentTurns() = %v, want empty", turns)
	}
}
