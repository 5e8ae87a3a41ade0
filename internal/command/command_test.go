package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/holon/witness/internal/engine"
	"github.com/holon/witness/internal/mode"
	"github.com/holon/witness/internal/session"
)

// fakeContemplator returns depth canned thoughts, echoing the seed chain.
type fakeContemplator struct {
	lastSeed string
	lastMode mode.Mode
	err      error
}

func (f *fakeContemplator) Contemplate(_ context.Context, seed string, depth int, m mode.Mode) ([]engine.Thought, error) {
	f.lastSeed = seed
	f.lastMode = m
	if f.err != nil {
		return nil, f.err
	}
	thoughts := make([]engine.Thought, depth)
	current := seed
	for i := range thoughts {
		out := fmt.Sprintf("thought %d on %s", i+1, current)
		thoughts[i] = engine.Thought{
			Depth:     i + 1,
			Input:     current,
			Output:    out,
			Mode:      m,
			Timestamp: time.Now().Format(time.RFC3339),
		}
		current = out
	}
	return thoughts, nil
}

func newTestRegistry(eng Contemplator) (*Registry, session.ModeStore) {
	reg := NewRegistry()
	modes := session.NewMemoryModeStore()
	RegisterBuiltins(reg, eng, modes)
	return reg, modes
}

func testCtx() *Context {
	return &Context{Platform: "discord", ChannelID: "chan-1", UserID: "u1", UserName: "tester"}
}

func TestThinkStreamsDepth3(t *testing.T) {
	eng := &fakeContemplator{}
	reg, _ := newTestRegistry(eng)

	res, err := reg.Dispatch(context.Background(), "!think what is time", testCtx())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// Intro + one message per thought.
	if len(res.Messages) != 1+engine.DefaultDepth {
		t.Fatalf("got %d messages, want %d", len(res.Messages), 1+engine.DefaultDepth)
	}
	if eng.lastSeed != "what is time" {
		t.Errorf("seed = %q", eng.lastSeed)
	}
	if eng.lastMode != mode.Standard {
		t.Errorf("mode = %q, want default standard", eng.lastMode)
	}
	for i, msg := range res.Messages[1:] {
		want := fmt.Sprintf("**Depth %d (standard):**", i+1)
		if !strings.HasPrefix(msg, want) {
			t.Errorf("message %d = %q, want prefix %q", i+1, msg, want)
		}
	}
}

func TestThinkEmptySeedDefaults(t *testing.T) {
	eng := &fakeContemplator{}
	reg, _ := newTestRegistry(eng)

	if _, err := reg.Dispatch(context.Background(), "!think", testCtx()); err != nil {
		t.Fatal(err)
	}
	if eng.lastSeed != engine.DefaultSeed {
		t.Errorf("seed = %q, want default", eng.lastSeed)
	}
}

func TestThinkUsesChannelMode(t *testing.T) {
	eng := &fakeContemplator{}
	reg, modes := newTestRegistry(eng)
	cc := testCtx()
	modes.Set(context.Background(), cc.SessionKey(), mode.Mystical)

	if _, err := reg.Dispatch(context.Background(), "!think x", cc); err != nil {
		t.Fatal(err)
	}
	if eng.lastMode != mode.Mystical {
		t.Errorf("mode = %q, want mystical", eng.lastMode)
	}

	// A different channel still defaults to standard.
	other := &Context{Platform: "discord", ChannelID: "chan-2"}
	if _, err := reg.Dispatch(context.Background(), "!think x", other); err != nil {
		t.Fatal(err)
	}
	if eng.lastMode != mode.Standard {
		t.Errorf("other channel mode = %q, want standard", eng.lastMode)
	}
}

func TestThinkReportsHalt(t *testing.T) {
	eng := &fakeContemplator{err: errors.New("provider down")}
	reg, _ := newTestRegistry(eng)

	res, err := reg.Dispatch(context.Background(), "!think x", testCtx())
	if err != nil {
		t.Fatalf("dispatch should absorb engine errors into a reply: %v", err)
	}
	last := res.Messages[len(res.Messages)-1]
	if !strings.Contains(last, "provider down") {
		t.Errorf("last message = %q, want halt notice", last)
	}
}

func TestModeChange(t *testing.T) {
	reg, modes := newTestRegistry(&fakeContemplator{})
	cc := testCtx()

	res, err := reg.Dispatch(context.Background(), "!mode scientific", cc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "scientific") || !strings.Contains(res.Content, "0.5") {
		t.Errorf("reply = %q", res.Content)
	}
	m, ok := modes.Get(context.Background(), cc.SessionKey())
	if !ok || m != mode.Scientific {
		t.Errorf("stored mode = %q/%v", m, ok)
	}
}

func TestModeUnknownLeavesModeUnchanged(t *testing.T) {
	reg, modes := newTestRegistry(&fakeContemplator{})
	cc := testCtx()
	modes.Set(context.Background(), cc.SessionKey(), mode.Poetic)

	res, err := reg.Dispatch(context.Background(), "!mode quantum", cc)
	if err != nil {
		t.Fatal(err)
	}
	// Rejection lists the valid modes.
	for _, m := range mode.All() {
		if !strings.Contains(res.Content, string(m)) {
			t.Errorf("listing missing %q: %q", m, res.Content)
		}
	}
	m, _ := modes.Get(context.Background(), cc.SessionKey())
	if m != mode.Poetic {
		t.Errorf("mode changed to %q, want poetic unchanged", m)
	}
}

func TestModesListing(t *testing.T) {
	reg, _ := newTestRegistry(&fakeContemplator{})
	res, err := reg.Dispatch(context.Background(), "!modes", testCtx())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "mystical") || !strings.Contains(res.Content, "temp: 1") {
		t.Errorf("listing = %q", res.Content)
	}
}

func TestUnknownCommand(t *testing.T) {
	reg, _ := newTestRegistry(&fakeContemplator{})
	res, err := reg.Dispatch(context.Background(), "!frobnicate", testCtx())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Content, "Unknown command") {
		t.Errorf("reply = %q", res.Content)
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand("!think x") {
		t.Error("!think should be a command")
	}
	if IsCommand("hello there") {
		t.Error("plain text is not a command")
	}
}
