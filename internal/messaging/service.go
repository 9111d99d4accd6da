// Package messaging provides the outbound reply abstraction.
//
// It defines a pluggable Replier interface so the pipeline never depends on
// a concrete chat platform client, plus the Slack implementation and a mock
// for tests.
package messaging

import "context"

// Replier posts replies into chat threads.
type Replier interface {
	// PostReply posts text into the given channel, mentioning the user and
	// threading the reply under threadTS. It returns the posted message
	// timestamp.
	PostReply(ctx context.Context, channel, user, text, threadTS string) (string, error)
}
