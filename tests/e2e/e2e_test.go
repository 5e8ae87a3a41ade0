package e2e

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/engine"
	"github.com/holon/witness/internal/mode"
	"github.com/holon/witness/internal/provider"
	"github.com/holon/witness/internal/session"
	pgstore "github.com/holon/witness/internal/store"
	"github.com/holon/witness/internal/thoughtlog"
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	testLogger, _ = zap.NewDevelopment()

	// 1. Start PostgreSQL
	pgDSN, pgCleanup, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
		os.Exit(1)
	}
	defer pgCleanup()

	testPGStore, err = pgstore.New(pgDSN, testLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pg store: %v\n", err)
		os.Exit(1)
	}
	defer testPGStore.Close()

	// Run migrations
	if err := testPGStore.Migrate(ctx, "../../migrations"); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	// 2. Start Redis
	redisURL, redisCleanup, err := startRedis(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer redisCleanup()
	testRedisURL = redisURL

	os.Exit(m.Run())
}

func TestThoughtArchive(t *testing.T) {
	ctx := context.Background()

	before, err := testPGStore.CountThoughts(ctx)
	if err != nil {
		t.Fatalf("CountThoughts: %v", err)
	}

	// contemplation_id is a UUID column; the engine always generates one.
	contemplationID := uuid.New().String()
	for depth := 1; depth <= 3; depth++ {
		thought := engine.Thought{
			Depth:  depth,
			Input:  fmt.Sprintf("input %d", depth),
			Output: fmt.Sprintf("output %d", depth),
			Mode:   mode.Philosophical,
		}
		if err := testPGStore.InsertThought(ctx, contemplationID, thought, "tinyllama"); err != nil {
			t.Fatalf("InsertThought depth %d: %v", depth, err)
		}
	}

	after, err := testPGStore.CountThoughts(ctx)
	if err != nil {
		t.Fatalf("CountThoughts: %v", err)
	}
	if after != before+3 {
		t.Errorf("count = %d, want %d", after, before+3)
	}

	recent, err := testPGStore.RecentThoughts(ctx, 3)
	if err != nil {
		t.Fatalf("RecentThoughts: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d recent thoughts, want 3", len(recent))
	}
	depths := map[int]bool{}
	for _, r := range recent {
		if r.ContemplationID != contemplationID {
			t.Errorf("contemplation id = %q, want %q", r.ContemplationID, contemplationID)
		}
		if r.Mode != "philosophical" {
			t.Errorf("mode = %q, want philosophical", r.Mode)
		}
		if r.Model != "tinyllama" {
			t.Errorf("model = %q, want tinyllama", r.Model)
		}
		depths[r.Depth] = true
	}
	for depth := 1; depth <= 3; depth++ {
		if !depths[depth] {
			t.Errorf("depth %d missing from recent thoughts", depth)
		}
	}
}

func TestRedisModeStore(t *testing.T) {
	ctx := context.Background()

	store, err := session.NewRedisModeStore(testRedisURL, testLogger)
	if err != nil {
		t.Fatalf("NewRedisModeStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	key := session.Key("discord", "e2e-channel")
	if _, ok := store.Get(ctx, key); ok {
		t.Fatal("expected miss for fresh channel")
	}

	if err := store.Set(ctx, key, mode.Mystical); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := store.Get(ctx, key)
	if !ok || got != mode.Mystical {
		t.Errorf("Get = %q, %v; want mystical, true", got, ok)
	}

	// Same channel id on another platform stays independent.
	other := session.Key("slack", "e2e-channel")
	if _, ok := store.Get(ctx, other); ok {
		t.Error("mode leaked across platforms")
	}

	if err := store.Set(ctx, key, mode.Scientific); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got, _ := store.Get(ctx, key); got != mode.Scientific {
		t.Errorf("after overwrite Get = %q, want scientific", got)
	}
}

func TestContemplationArchivesThoughts(t *testing.T) {
	ctx := context.Background()

	router := provider.NewRouter(testLogger)
	router.Register(&echoProvider{})

	thoughtLog, err := thoughtlog.NewWriter(t.TempDir(), testLogger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	eng := engine.New(router, thoughtLog, "tinyllama", testLogger)
	eng.SetArchiver(testPGStore)

	before, _ := testPGStore.CountThoughts(ctx)

	thoughts, err := eng.Contemplate(ctx, "what persists?", 4, mode.Standard)
	if err != nil {
		t.Fatalf("Contemplate: %v", err)
	}
	if len(thoughts) != 4 {
		t.Fatalf("got %d thoughts, want 4", len(thoughts))
	}

	after, _ := testPGStore.CountThoughts(ctx)
	if after != before+4 {
		t.Errorf("archived count = %d, want %d", after, before+4)
	}

	recent, err := testPGStore.RecentThoughts(ctx, 4)
	if err != nil {
		t.Fatalf("RecentThoughts: %v", err)
	}
	id := recent[0].ContemplationID
	for _, r := range recent {
		if r.ContemplationID != id {
			t.Errorf("thoughts split across contemplations: %q vs %q", r.ContemplationID, id)
		}
		if !strings.HasPrefix(r.Output, "reflection on: ") {
			t.Errorf("output %q not produced by echo provider", r.Output)
		}
	}
}
