// Package events turns raw Slack event payloads into canonical messages.
//
// Normalization is the only place that inspects the loosely-structured wire
// event; everything downstream operates on models.Message. Events that must
// not be processed at all (edits, bot traffic, non-message events) are
// rejected with ErrSkip so the caller can acknowledge them without work.
package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/linkbrief/linkbrief/internal/models"
)

// ErrSkip marks an event that is intentionally not processed. Callers use
// errors.Is to distinguish a skip from a real failure.
var ErrSkip = errors.New("event skipped")

// SubtypeMessageChanged is the Slack subtype attached to message edits.
const SubtypeMessageChanged = "message_changed"

// EventTypeMessage is the only event type the pipeline processes.
const EventTypeMessage = "message"

// Normalize validates the raw event against the skip rules and builds the
// canonical message record.
//
// Skip rules, in order: message edits (subtype "message_changed"), messages
// carrying a bot_id (the bot must not react to itself or other bots), and
// any event whose type is not "message". Missing optional fields default to
// empty values and never cause an error.
func Normalize(ev models.Event) (models.Message, error) {
	if ev.Subtype == SubtypeMessageChanged {
		slog.Debug("events.Normalize: skipping message edit", "ts", ev.TS)
		return models.Message{}, fmt.Errorf("%w: subtype %q", ErrSkip, ev.Subtype)
	}
	if ev.BotID != "" {
		slog.Debug("events.Normalize: skipping bot message", "bot_id", ev.BotID, "ts", ev.TS)
		return models.Message{}, fmt.Errorf("%w: bot message from %s", ErrSkip, ev.BotID)
	}
	if ev.Type != EventTypeMessage {
		slog.Debug("events.Normalize: skipping non-message event", "type", ev.Type)
		return models.Message{}, fmt.Errorf("%w: event type %q", ErrSkip, ev.Type)
	}

	msg := models.Message{
		ID:       messageID(ev),
		Text:     ev.Text,
		User:     ev.User,
		Channel:  ev.Channel,
		ThreadTS: ev.ThreadTS,
		TS:       ev.TS,
		Blocks:   ev.Blocks,
	}
	slog.Debug("events.Normalize: normalized message", "id", msg.ID, "channel", msg.Channel, "threaded", msg.IsThreaded())
	return msg, nil
}

// messageID selects the idempotency key for an event: client_msg_id when the
// client supplied one, else the message timestamp. Redeliveries of the same
// logical message carry the same value for both, so either is a stable key.
func messageID(ev models.Event) string {
	if ev.ClientMsgID != "" {
		return ev.ClientMsgID
	}
	return ev.TS
}
