// Package models defines the core data structures for LinkBrief.
//
// It includes the inbound Slack event envelope, the canonical message record
// shared across modules, and the API response types.
package models

// Envelope is the outer payload delivered to the events webhook.
//
// Slack sends two shapes on the same endpoint: a one-time URL verification
// handshake carrying a challenge token, and event callbacks carrying the
// actual event. Fields not present in a given delivery decode to zero values.
type Envelope struct {
	Type      string `json:"type,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	Event     Event  `json:"event,omitempty"`
}

// IsChallenge reports whether the envelope is a URL verification handshake.
func (e Envelope) IsChallenge() bool {
	return e.Challenge != ""
}

// Event is the inner Slack event as delivered. The shape varies by client
// (desktop vs. mobile) and by message kind; every field is optional on the
// wire and defaults to its zero value.
type Event struct {
	Type        string  `json:"type,omitempty"`
	Subtype     string  `json:"subtype,omitempty"`
	BotID       string  `json:"bot_id,omitempty"`
	ClientMsgID string  `json:"client_msg_id,omitempty"`
	TS          string  `json:"ts,omitempty"`
	ThreadTS    string  `json:"thread_ts,omitempty"`
	Text        string  `json:"text,omitempty"`
	User        string  `json:"user,omitempty"`
	Channel     string  `json:"channel,omitempty"`
	Blocks      []Block `json:"blocks,omitempty"`
}

// Block type constants as used by Slack's block kit payloads.
const (
	// BlockTypeRichText marks a rich text block containing element trees.
	BlockTypeRichText = "rich_text"
	// BlockTypeSection marks a section block with a text object.
	BlockTypeSection = "section"
)

// Rich text element type constants.
const (
	// ElementTypeSection marks a rich_text_section container element.
	ElementTypeSection = "rich_text_section"
	// ElementTypeLink marks a link element carrying a URL.
	ElementTypeLink = "link"
)

// Block is a tagged variant over the block kinds LinkBrief inspects.
// Unknown block types decode without error and are ignored downstream.
type Block struct {
	Type     string            `json:"type,omitempty"`
	Elements []RichTextElement `json:"elements,omitempty"`
	Text     *SectionText      `json:"text,omitempty"`
}

// RichTextElement is a node in a rich text element tree. Container elements
// carry nested Elements; link elements carry a URL.
type RichTextElement struct {
	Type     string            `json:"type,omitempty"`
	URL      string            `json:"url,omitempty"`
	Elements []RichTextElement `json:"elements,omitempty"`
}

// SectionText is the text object of a section block.
type SectionText struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// Message is the canonical, normalized representation of an inbound chat
// message. All modules past the normalizer operate on this type only.
//
// ID is the idempotency key: client_msg_id when the client supplied one,
// otherwise the message timestamp. Both identify a logical message across
// webhook redeliveries, so the fallback is deterministic.
type Message struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	User     string  `json:"user"`
	Channel  string  `json:"channel"`
	ThreadTS string  `json:"thread_ts,omitempty"`
	TS       string  `json:"ts"`
	Blocks   []Block `json:"blocks,omitempty"`
}

// IsThreaded reports whether the message already belongs to a thread.
func (m Message) IsThreaded() bool {
	return m.ThreadTS != ""
}

// ReplyThreadTS returns the thread timestamp a reply to this message must
// use: the existing thread if the message is in one, otherwise the message's
// own timestamp, rooting a new thread.
func (m Message) ReplyThreadTS() string {
	if m.ThreadTS != "" {
		return m.ThreadTS
	}
	return m.TS
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates the event was accepted and processed.
	APIStatusOK APIStatus = "ok"
	// APIStatusSkipped indicates the event matched a skip rule (edits, bot messages).
	APIStatusSkipped APIStatus = "skipped"
	// APIStatusAlreadyProcessed indicates the message id was seen before.
	APIStatusAlreadyProcessed APIStatus = "already_processed"
	// APIStatusError indicates processing failed.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// ChallengeResponse echoes the URL verification token back to Slack.
type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result data of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build constructs and returns the final APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Convenience functions for common response patterns

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Status creates an API response carrying only the given status.
func Status(status APIStatus) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(status).
		Build()
}
