package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/mode"
	"github.com/holon/witness/internal/provider"
	"github.com/holon/witness/internal/thoughtlog"
)

// Depth bounds for one contemplation.
const (
	MinDepth     = 1
	MaxDepth     = 10
	DefaultDepth = 3
)

// DefaultSeed is used when a caller submits an empty prompt.
const DefaultSeed = "What is the nature of consciousness?"

// Thought is one recursion step. Immutable once produced.
type Thought struct {
	Depth     int       `json:"depth"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Mode      mode.Mode `json:"mode"`
	Timestamp string    `json:"timestamp"`
}

// Archiver persists thoughts outside the process. Archive failures must not
// fail a contemplation.
type Archiver interface {
	InsertThought(ctx context.Context, contemplationID string, t Thought, model string) error
}

// Engine runs recursive self-dialogue: each step's output becomes the next
// step's input.
type Engine struct {
	router  *provider.Router
	log     *thoughtlog.Writer
	archive Archiver
	model   string
	pick    mode.Picker
	now     func() time.Time

	// continueOnError restores the original soft failure policy: a failed
	// step yields a placeholder output and the sequence keeps going. Off by
	// default; the default policy halts and returns the partial sequence.
	continueOnError bool

	mu        sync.Mutex
	total     int
	startedAt time.Time

	logger *zap.Logger
}

// New creates an engine backed by the given provider router and thought log.
func New(router *provider.Router, log *thoughtlog.Writer, model string, logger *zap.Logger) *Engine {
	return &Engine{
		router:    router,
		log:       log,
		model:     model,
		pick:      mode.RandomPicker,
		now:       time.Now,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// SetArchiver wires an optional persistent archive.
func (e *Engine) SetArchiver(a Archiver) { e.archive = a }

// SetPicker overrides the decoration frame picker.
func (e *Engine) SetPicker(p mode.Picker) { e.pick = p }

// SetContinueOnError selects the soft failure policy.
func (e *Engine) SetContinueOnError(v bool) { e.continueOnError = v }

// SetClock overrides the wall clock. Used by tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Model returns the configured model name.
func (e *Engine) Model() string { return e.model }

// Contemplate runs depth sequential steps starting from seed. Step i's input
// is step i-1's output. On a provider failure it returns the thoughts
// completed so far together with the error, unless the engine is configured
// to continue with a placeholder output.
func (e *Engine) Contemplate(ctx context.Context, seed string, depth int, m mode.Mode) ([]Thought, error) {
	if depth < MinDepth || depth > MaxDepth {
		return nil, fmt.Errorf("depth %d out of range [%d,%d]", depth, MinDepth, MaxDepth)
	}
	if seed == "" {
		seed = DefaultSeed
	}

	id := uuid.New().String()
	e.logger.Info("contemplation started",
		zap.String("id", id),
		zap.String("mode", string(m)),
		zap.Int("depth", depth))

	thoughts := make([]Thought, 0, depth)
	current := seed

	for i := 1; i <= depth; i++ {
		output, err := e.think(ctx, current, m)
		if err != nil {
			if !e.continueOnError {
				e.logger.Error("contemplation halted",
					zap.String("id", id), zap.Int("depth", i), zap.Error(err))
				return thoughts, fmt.Errorf("depth %d: %w", i, err)
			}
			e.logger.Warn("step failed, continuing with placeholder",
				zap.String("id", id), zap.Int("depth", i), zap.Error(err))
			output = fmt.Sprintf("Contemplation error: %v", err)
		}

		t := Thought{
			Depth:     i,
			Input:     current,
			Output:    output,
			Mode:      m,
			Timestamp: e.now().Format(time.RFC3339),
		}
		e.record(ctx, id, t)
		thoughts = append(thoughts, t)
		current = output
	}

	e.logger.Info("contemplation finished", zap.String("id", id), zap.Int("thoughts", len(thoughts)))
	return thoughts, nil
}

// think performs a single LLM call: mode instruction in, decorated text out.
func (e *Engine) think(ctx context.Context, input string, m mode.Mode) (string, error) {
	resp, err := e.router.Route(ctx, &provider.ChatRequest{
		Model:       e.model,
		Messages:    []provider.Message{{Role: "user", Content: m.Instruction(input)}},
		Temperature: m.Temperature(),
	})
	if err != nil {
		return "", err
	}
	return m.Decorate(resp.Content, e.pick), nil
}

// record appends the thought to the daily log and the archive. Neither sink
// is allowed to fail the contemplation: the in-memory sequence is the
// caller's result, the NDJSON file is best-effort durable.
func (e *Engine) record(ctx context.Context, contemplationID string, t Thought) {
	e.mu.Lock()
	e.total++
	e.mu.Unlock()

	if e.log != nil {
		err := e.log.Append(thoughtlog.Entry{
			Timestamp: t.Timestamp,
			Input:     t.Input,
			Output:    t.Output,
			Mode:      string(t.Mode),
			Model:     e.model,
		})
		if err != nil {
			e.logger.Error("thought log append failed", zap.Error(err))
		}
	}

	if e.archive != nil {
		if err := e.archive.InsertThought(ctx, contemplationID, t, e.model); err != nil {
			e.logger.Error("thought archive insert failed", zap.Error(err))
		}
	}
}

// Stats reports process-lifetime counters for the status endpoint.
type Stats struct {
	Model          string   `json:"model"`
	TotalThoughts  int      `json:"total_thoughts"`
	Uptime         string   `json:"uptime"`
	ModesAvailable []string `json:"modes_available"`
}

// Stats returns the current engine statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	total := e.total
	e.mu.Unlock()

	modes := make([]string, 0, len(mode.All()))
	for _, m := range mode.All() {
		modes = append(modes, string(m))
	}
	return Stats{
		Model:          e.model,
		TotalThoughts:  total,
		Uptime:         time.Since(e.startedAt).Round(time.Second).String(),
		ModesAvailable: modes,
	}
}
