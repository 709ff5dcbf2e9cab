package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// slackPoster is the slice of the Slack API the transport posts with.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackTransport carries DMs over Slack Socket Mode. The IM channel id
// doubles as the user id, since Slack gives each user their own IM
// conversation with the bot.
type SlackTransport struct {
	api    *slack.Client
	socket *socketmode.Client
	poster slackPoster

	handlers  []Handler
	botUserID string
	log       *slog.Logger
}

// NewSlackTransport builds the transport from a bot token (xoxb-) and
// an app-level token (xapp-).
func NewSlackTransport(botToken, appToken string) (*SlackTransport, error) {
	if botToken == "" {
		return nil, errors.New("slack bot token is required")
	}
	if !strings.HasPrefix(appToken, "xapp-") {
		return nil, errors.New("slack app-level token (xapp-...) is required for Socket Mode")
	}

	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &SlackTransport{
		api:    api,
		socket: socketmode.New(api),
		poster: api,
		log:    slog.With("component", "slack"),
	}, nil
}

// Subscribe registers an inbound DM handler.
func (st *SlackTransport) Subscribe(h Handler) {
	st.handlers = append(st.handlers, h)
}

// Run connects to Socket Mode and dispatches DM events until the
// context ends.
func (st *SlackTransport) Run(ctx context.Context) error {
	if auth, err := st.api.AuthTestContext(ctx); err == nil {
		st.botUserID = auth.UserID
		st.log.Info("authenticated", "bot_user", auth.UserID)
	} else {
		st.log.Warn("auth test failed, continuing without own user id", "error", err)
	}

	go func() {
		if err := st.socket.RunContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
			st.log.Error("socket mode connection ended", "error", err)
		}
	}()

	st.handleEvents(ctx, st.socket.Events, func(req socketmode.Request) {
		st.socket.Ack(req)
	})
	return ctx.Err()
}

// SendDirectMessage posts one message into the user's IM conversation.
func (st *SlackTransport) SendDirectMessage(ctx context.Context, userID, text string) error {
	_, _, err := st.poster.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post to %s: %w", userID, err)
	}
	return nil
}

func (st *SlackTransport) handleEvents(ctx context.Context, events <-chan socketmode.Event, ack func(socketmode.Request)) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-events:
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				st.log.Info("connecting to Slack Socket Mode")
			case socketmode.EventTypeConnectionError:
				st.log.Warn("socket mode connection failed, retrying")
			case socketmode.EventTypeConnected:
				st.log.Info("connected to Slack Socket Mode")
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					ack(*evt.Request)
				}
				if apiEvent.Type != slackevents.CallbackEvent {
					continue
				}
				if ev, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
					st.dispatch(ev)
				}
			}
		}
	}
}

// dispatch forwards a message event to the handlers if it is a direct
// message from a human. Channel traffic, bot echoes and message edits
// never reach the core.
func (st *SlackTransport) dispatch(ev *slackevents.MessageEvent) {
	if ev.ChannelType != "im" {
		return
	}
	if ev.BotID != "" || ev.SubType != "" {
		return
	}
	if ev.User == "" || ev.User == st.botUserID {
		return
	}
	msg := Message{UserID: ev.Channel, Text: ev.Text}
	st.log.Debug("inbound DM", "channel", ev.Channel, "user", ev.User)
	for _, h := range st.handlers {
		h(msg)
	}
}
