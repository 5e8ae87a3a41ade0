package session

import (
	"context"
	"testing"

	"github.com/holon/witness/internal/mode"
)

func TestMemoryModeStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryModeStore()

	if _, ok := s.Get(ctx, Key("discord", "c1")); ok {
		t.Error("expected miss for unset channel")
	}

	if err := s.Set(ctx, Key("discord", "c1"), mode.Mystical); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get(ctx, Key("discord", "c1"))
	if !ok || got != mode.Mystical {
		t.Errorf("got %q/%v, want mystical", got, ok)
	}

	// Channels are independent.
	if _, ok := s.Get(ctx, Key("discord", "c2")); ok {
		t.Error("mode leaked across channels")
	}
	if _, ok := s.Get(ctx, Key("slack", "c1")); ok {
		t.Error("mode leaked across platforms")
	}
}
