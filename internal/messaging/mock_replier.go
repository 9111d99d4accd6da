package messaging

import (
	"context"
	"sync"
)

// PostedReply records one PostReply call made against a MockReplier.
type PostedReply struct {
	Channel  string
	User     string
	Text     string
	ThreadTS string
}

// MockReplier is a Replier for tests. It records calls and can be configured
// to fail.
type MockReplier struct {
	mu      sync.Mutex
	Replies []PostedReply
	Err     error
}

// Compile-time check that MockReplier implements Replier.
var _ Replier = (*MockReplier)(nil)

// NewMockReplier creates a mock replier that succeeds.
func NewMockReplier() *MockReplier {
	return &MockReplier{}
}

func (m *MockReplier) PostReply(ctx context.Context, channel, user, text, threadTS string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Replies = append(m.Replies, PostedReply{Channel: channel, User: user, Text: text, ThreadTS: threadTS})
	return "1700000000.999999", nil
}

// Posted returns a copy of the recorded replies.
func (m *MockReplier) Posted() []PostedReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PostedReply, len(m.Replies))
	copy(out, m.Replies)
	return out
}
