package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// slackAPI is the subset of the Slack client the service uses.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackService posts replies via the Slack Web API.
type SlackService struct {
	api slackAPI
}

// Compile-time check that SlackService implements Replier.
var _ Replier = (*SlackService)(nil)

// NewSlackService creates a Slack replier from a bot token.
func NewSlackService(token string) (*SlackService, error) {
	if token == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN not set")
	}
	return &SlackService{api: slack.New(token)}, nil
}

// PostReply posts text into the channel as a threaded reply mentioning the
// user. When threadTS is the source message's own timestamp a new thread is
// rooted there.
func (s *SlackService) PostReply(ctx context.Context, channel, user, text, threadTS string) (string, error) {
	body := text
	if user != "" {
		body = fmt.Sprintf("<@%s> %s", user, text)
	}
	opts := []slack.MsgOption{slack.MsgOptionText(body, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}
	_, ts, err := s.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		slog.Error("SlackService.PostReply: failed to post message", "error", err, "channel", channel, "thread_ts", threadTS)
		return "", fmt.Errorf("failed to post reply to %s: %w", channel, err)
	}
	slog.Debug("SlackService.PostReply: reply posted", "channel", channel, "ts", ts, "thread_ts", threadTS)
	return ts, nil
}
