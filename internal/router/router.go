package router

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/holon/witness/internal/command"
	"github.com/holon/witness/internal/gateway"
)

// DefaultPacing is the delay between streamed thought messages.
const DefaultPacing = time.Second

// MessageRouter routes inbound chat messages to the command registry and
// streams replies back through the gateway.
type MessageRouter struct {
	gw       *gateway.Gateway
	commands *command.Registry
	pacing   time.Duration
	logger   *zap.Logger
}

// New creates a MessageRouter.
func New(gw *gateway.Gateway, commands *command.Registry, logger *zap.Logger) *MessageRouter {
	return &MessageRouter{
		gw:       gw,
		commands: commands,
		pacing:   DefaultPacing,
		logger:   logger,
	}
}

// SetPacing overrides the delay between streamed messages. Used by tests.
func (mr *MessageRouter) SetPacing(d time.Duration) { mr.pacing = d }

// Handle routes an inbound message. Signature matches gateway.MessageHandler.
func (mr *MessageRouter) Handle(msg *gateway.InboundMessage) {
	ctx := context.Background()

	if !command.IsCommand(msg.Content) {
		// Channel chatter is not addressed to the bot. REST callers are
		// always addressing the service, so they get a usage hint instead
		// of a timeout.
		if msg.Platform == "rest" {
			mr.send(ctx, msg, "Commands: !think [prompt], !mode <name>, !modes, !help")
		}
		return
	}

	mr.logger.Info("dispatching command",
		zap.String("platform", msg.Platform),
		zap.String("channel", msg.ChannelID),
		zap.String("user", msg.UserName),
	)

	cc := &command.Context{
		Platform:  msg.Platform,
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		UserName:  msg.UserName,
	}
	result, err := mr.commands.Dispatch(ctx, msg.Content, cc)
	if err != nil {
		mr.logger.Error("command dispatch error", zap.Error(err))
		mr.send(ctx, msg, "Command error: "+err.Error())
		return
	}

	if len(result.Messages) == 0 {
		mr.send(ctx, msg, result.Content)
		return
	}

	// REST requests expect a single HTTP response, so the stream is
	// collapsed into one message. Chat platforms get one message per
	// thought with a pacing delay in between.
	if msg.Platform == "rest" {
		mr.send(ctx, msg, strings.Join(result.Messages, "\n\n"))
		return
	}
	for i, m := range result.Messages {
		if i > 0 && mr.pacing > 0 {
			time.Sleep(mr.pacing)
		}
		mr.send(ctx, msg, m)
	}
}

func (mr *MessageRouter) send(ctx context.Context, in *gateway.InboundMessage, content string) {
	err := mr.gw.Send(ctx, &gateway.OutboundMessage{
		Platform:  in.Platform,
		ChannelID: in.ChannelID,
		Content:   content,
		ReplyTo:   in.ReplyTo,
	})
	if err != nil {
		mr.logger.Error("send reply failed",
			zap.String("platform", in.Platform),
			zap.String("channel", in.ChannelID),
			zap.Error(err))
	}
}
