package ai

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"github.com/tkivisto/legalintake/internal/errors"
)

// Message is one role-tagged message sent to the completion service.
type Message struct {
	Role    string
	Content string
}

// ToolCall is a natively-structured tool call reported by the completion
// service. Args is the raw JSON argument payload.
type ToolCall struct {
	Name string
	Args string
}

// Completion is the completion service's answer to one request.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Completer is the completion service capability consumed by the intake
// controller and the analysis extractor. Implementations may fail with
// transport errors which callers must recover from.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// Options configure the completion client. The model choice and temperature
// are injected here instead of read from ambient global state so that tests
// can substitute doubles.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

type Client struct {
	client *openai.Client
	opts   Options
}

const maxTokens = 4096

func NewClient(opts Options) *Client {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		opts:   opts,
	}
}

// Complete issues a single chat completion request and returns its content
// together with any natively-structured tool calls.
func (c *Client) Complete(ctx context.Context, messages []Message) (Completion, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, message := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
			Role:    message.Role,
			Content: message.Content,
		}
	}

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       c.opts.Model,
			MaxTokens:   maxTokens,
			Temperature: c.opts.Temperature,
			Messages:    chatMessages,
		},
	)
	if err != nil {
		return Completion{}, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return Completion{}, errors.New("chat completion returned no choices")
	}

	choice := completion.Choices[0].Message
	result := Completion{
		Content:   choice.Content,
		ToolCalls: nil,
	}
	for _, toolCall := range choice.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			Name: toolCall.Function.Name,
			Args: toolCall.Function.Arguments,
		})
	}
	return result, nil
}
