package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Prefix marks a chat message as a command.
const Prefix = "!"

// Command represents a chat command.
type Command struct {
	Name        string
	Description string
	Usage       string
	Handler     Handler
}

// Handler is the function signature for command execution.
type Handler func(ctx context.Context, args string, cc *Context) (*Result, error)

// Context provides the session identity to command handlers.
type Context struct {
	Platform  string
	ChannelID string
	UserID    string
	UserName  string
}

// SessionKey identifies the channel session the command runs in.
func (cc *Context) SessionKey() string {
	return cc.Platform + ":" + cc.ChannelID
}

// Result holds the output of a command. When Messages is set the caller
// streams them in order as separate chat messages; otherwise Content is sent
// as a single reply.
type Result struct {
	Content  string   `json:"content"`
	Messages []string `json:"messages,omitempty"`
}

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	mu       sync.RWMutex
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name] = cmd
}

// IsCommand reports whether a message is a command invocation.
func IsCommand(input string) bool {
	return strings.HasPrefix(input, Prefix)
}

// Dispatch parses a "!command args" string and executes the matching handler.
func (r *Registry) Dispatch(ctx context.Context, input string, cc *Context) (*Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	input = strings.TrimPrefix(input, Prefix)
	parts := strings.SplitN(input, " ", 2)
	name := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	cmd, ok := r.commands[name]
	if !ok {
		return &Result{
			Content: fmt.Sprintf("Unknown command: %s%s. Type %shelp for available commands.", Prefix, name, Prefix),
		}, nil
	}

	return cmd.Handler(ctx, args, cc)
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
