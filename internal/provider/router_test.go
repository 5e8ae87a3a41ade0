package provider

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeProvider struct {
	id    string
	reply string
	err   error
	calls int
}

func (f *fakeProvider) ID() string   { return f.id }
func (f *fakeProvider) Name() string { return f.id }

func (f *fakeProvider) Chat(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{Model: req.Model, Content: f.reply}, nil
}

func (f *fakeProvider) ListModels(context.Context) ([]Model, error) { return nil, nil }
func (f *fakeProvider) HealthCheck(context.Context) error           { return f.err }

func TestRouteDefault(t *testing.T) {
	r := NewRouter(zap.NewNop())
	p := &fakeProvider{id: "local", reply: "hello"}
	r.Register(p)

	resp, err := r.Route(context.Background(), &ChatRequest{Model: "tinyllama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("got %q", resp.Content)
	}
	if r.DefaultID() != "local" {
		t.Errorf("first registered provider should be default, got %q", r.DefaultID())
	}
}

func TestRouteFallbackChain(t *testing.T) {
	r := NewRouter(zap.NewNop())
	primary := &fakeProvider{id: "primary", err: errors.New("down")}
	backup := &fakeProvider{id: "backup", reply: "from backup"}
	r.Register(primary)
	r.Register(backup)
	r.SetFallbacks([]string{"backup"})

	resp, err := r.Route(context.Background(), &ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "from backup" {
		t.Errorf("got %q", resp.Content)
	}
	if primary.calls != 1 || backup.calls != 1 {
		t.Errorf("call counts: primary=%d backup=%d", primary.calls, backup.calls)
	}
}

func TestRouteAllFailed(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.Register(&fakeProvider{id: "a", err: errors.New("down")})
	r.Register(&fakeProvider{id: "b", err: errors.New("also down")})
	r.SetFallbacks([]string{"b"})

	if _, err := r.Route(context.Background(), &ChatRequest{}); err == nil {
		t.Fatal("expected error when all providers fail")
	}
}

func TestRouteNoProviders(t *testing.T) {
	r := NewRouter(zap.NewNop())
	if _, err := r.Route(context.Background(), &ChatRequest{}); err == nil {
		t.Fatal("expected error with no providers")
	}
}
