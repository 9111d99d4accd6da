package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
)

// fakeSlackAPI records PostMessageContext calls.
type fakeSlackAPI struct {
	channel string
	optsLen int
	err     error
}

func (f *fakeSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channel = channelID
	f.optsLen = len(options)
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "123.456", nil
}

func TestNewSlackService_RequiresToken(t *testing.T) {
	if _, err := NewSlackService(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestPostReply_Success(t *testing.T) {
	api := &fakeSlackAPI{}
	s := &SlackService{api: api}
	ts, err := s.PostReply(context.Background(), "C123", "U456", "summary text", "100.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "123.456" {
		t.Errorf("expected posted ts, got %s", ts)
	}
	if api.channel != "C123" {
		t.Errorf("expected channel C123, got %s", api.channel)
	}
	// Text option plus thread option.
	if api.optsLen != 2 {
		t.Errorf("expected 2 message options, got %d", api.optsLen)
	}
}

func TestPostReply_NoThreadOptionWithoutThreadTS(t *testing.T) {
	api := &fakeSlackAPI{}
	s := &SlackService{api: api}
	if _, err := s.PostReply(context.Background(), "C123", "U456", "text", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.optsLen != 1 {
		t.Errorf("expected only the text option, got %d", api.optsLen)
	}
}

func TestPostReply_Error(t *testing.T) {
	s := &SlackService{api: &fakeSlackAPI{err: errors.New("channel_not_found")}}
	if _, err := s.PostReply(context.Background(), "C123", "U456", "text", ""); err == nil {
		t.Fatal("expected error")
	}
}
