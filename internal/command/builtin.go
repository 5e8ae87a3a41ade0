package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/holon/witness/internal/engine"
	"github.com/holon/witness/internal/mode"
	"github.com/holon/witness/internal/session"
)

// Contemplator runs a recursion loop. Satisfied by *engine.Engine.
type Contemplator interface {
	Contemplate(ctx context.Context, seed string, depth int, m mode.Mode) ([]engine.Thought, error)
}

// RegisterBuiltins wires up the built-in chat commands: !think, !mode,
// !modes, and !help.
func RegisterBuiltins(reg *Registry, eng Contemplator, modes session.ModeStore) {
	reg.Register(thinkCommand(eng, modes))
	reg.Register(modeCommand(modes))
	reg.Register(modesCommand())
	reg.Register(helpCommand(reg))
}

// channelMode returns the channel's current mode, defaulting to standard.
func channelMode(ctx context.Context, modes session.ModeStore, cc *Context) mode.Mode {
	if m, ok := modes.Get(ctx, cc.SessionKey()); ok {
		return m
	}
	return mode.Standard
}

// modeListing is shared by !modes and the !mode rejection path.
func modeListing() string {
	var b strings.Builder
	b.WriteString("🔮 **Available Thinking Modes:**\n")
	for _, m := range mode.All() {
		fmt.Fprintf(&b, "- **%s**: %s (temp: %g)\n", m, m.Description(), m.Temperature())
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// !think
// ---------------------------------------------------------------------------

func thinkCommand(eng Contemplator, modes session.ModeStore) *Command {
	return &Command{
		Name:        "think",
		Description: "Generate recursive thoughts from a seed prompt",
		Usage:       "!think [prompt]",
		Handler: func(ctx context.Context, args string, cc *Context) (*Result, error) {
			m := channelMode(ctx, modes, cc)
			seed := strings.TrimSpace(args)
			if seed == "" {
				seed = engine.DefaultSeed
			}

			msgs := []string{
				fmt.Sprintf("🌀 **Initiating %s Recursion:**\n> *'%s'*", titleCase(string(m)), seed),
			}

			thoughts, err := eng.Contemplate(ctx, seed, engine.DefaultDepth, m)
			for _, t := range thoughts {
				msgs = append(msgs, fmt.Sprintf("**Depth %d (%s):**\n%s\n`%s`",
					t.Depth, t.Mode, t.Output, t.Timestamp))
			}
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("⚠️ Contemplation halted: %v", err))
			}
			return &Result{Messages: msgs}, nil
		},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ---------------------------------------------------------------------------
// !mode
// ---------------------------------------------------------------------------

func modeCommand(modes session.ModeStore) *Command {
	return &Command{
		Name:        "mode",
		Description: "Change this channel's thinking mode",
		Usage:       "!mode <name>",
		Handler: func(ctx context.Context, args string, cc *Context) (*Result, error) {
			m, err := mode.Parse(args)
			if err != nil {
				// Unknown mode: leave the current mode unchanged and
				// re-list the valid ones.
				return &Result{Content: modeListing()}, nil
			}
			if err := modes.Set(ctx, cc.SessionKey(), m); err != nil {
				return nil, fmt.Errorf("store mode: %w", err)
			}
			return &Result{
				Content: fmt.Sprintf("🔄 Mode changed to **%s**\nTemperature setting: %g", m, m.Temperature()),
			}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// !modes
// ---------------------------------------------------------------------------

func modesCommand() *Command {
	return &Command{
		Name:        "modes",
		Description: "List available thinking modes",
		Usage:       "!modes",
		Handler: func(_ context.Context, _ string, _ *Context) (*Result, error) {
			return &Result{Content: modeListing()}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// !help
// ---------------------------------------------------------------------------

func helpCommand(reg *Registry) *Command {
	return &Command{
		Name:        "help",
		Description: "List all available commands",
		Usage:       "!help",
		Handler: func(_ context.Context, _ string, _ *Context) (*Result, error) {
			cmds := reg.List()
			var b strings.Builder
			b.WriteString("📝 Commands:\n")
			for _, c := range cmds {
				fmt.Fprintf(&b, "`%s` — %s\n", c.Usage, c.Description)
			}
			return &Result{Content: b.String()}, nil
		},
	}
}
