// Package summarize provides page summarization using the OpenAI API.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultInstructions is the system prompt applied to fetched page content.
// Replies are posted to Slack, which only renders single-asterisk bold and
// single-underscore italics, hence the formatting rules.
const DefaultInstructions = "I am a junior PhD student in molecular biology, synthetic biology, " +
	"bioengineering, and bioinformatics. I have a basic understanding of all of these fields, " +
	"but I am not an expert. Summarize the following academic paper webpage. Give me the main " +
	"findings and the key points, and also why this paper is important in the field. Include " +
	"necessary background information. Limit the response to 200 words. The message is posted " +
	"to Slack, so format it accordingly: only single asterisks for bold and single underscores " +
	"for italics, no other formatting options."

// ErrNoChoicesReturned indicates the model returned an empty choice list.
var ErrNoChoicesReturned = errors.New("no choices returned")

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openAIChatService adapts the OpenAI SDK client to chatService.
type openAIChatService struct {
	client openai.Client
}

func (s *openAIChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the summarizer client.
type Opts struct {
	APIKey       string
	Model        string
	Instructions string
}

// Option configures the summarizer client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithInstructions replaces the default system prompt.
func WithInstructions(instructions string) Option {
	return func(o *Opts) { o.Instructions = instructions }
}

// Client wraps the OpenAI chat completion service for summarizing pages.
type Client struct {
	chat         chatService
	model        string
	instructions string
}

// NewClient initializes a summarizer client. The API key comes from options
// or the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:        DefaultModel,
		Instructions: DefaultInstructions,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		chat:         &openAIChatService{client: cli},
		model:        cfg.Model,
		instructions: cfg.Instructions,
	}, nil
}

// Summarize generates a summary for the given page content. The caller
// bounds the call via ctx; the content is expected to be pre-truncated by
// the fetcher.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.instructions),
			openai.UserMessage(content),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
