package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TextGenerator is the optional text-generation collaborator agents use for
// rationale text. Implementations must be safe for concurrent use. A nil
// TextGenerator means "unavailable" and selects the rule-based path.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Client wraps the OpenAI chat completions API behind TextGenerator.
type Client struct {
	client chatClient
	tracer trace.Tracer
	model  string
}

// New returns nil when no API key is configured, which downstream code
// treats as the collaborator being unavailable.
func New(tracer trace.Tracer, apiKey, model string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &openaiClient{client: c},
		tracer: tracer,
		model:  model,
	}
}

func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("text generator unavailable")
	}
	ctx, span := c.tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

type openaiClient struct {
	client openai.Client
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
