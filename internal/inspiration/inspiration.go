// Package inspiration produces a one-sentence reflection about a prayer.
package inspiration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

// Fallback is shown whenever no reflection could be generated.
const Fallback = "The best of deeds are those done consistently, even if they are small."

const requestTimeout = 15 * time.Second

// ErrNoProvider is returned when no API key is configured.
var ErrNoProvider = errors.New("no inspiration provider configured")

// Provider generates a reflection for a prayer.
type Provider interface {
	Inspire(ctx context.Context, name prayer.Name) (string, error)
}

// completer is the slice of the OpenAI SDK the client needs.
type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI asks a chat model for the reflection.
type OpenAI struct {
	chat  completer
	model openai.ChatModel
}

// NewOpenAI returns a client for apiKey. An empty key yields a client whose
// Inspire always returns ErrNoProvider.
func NewOpenAI(apiKey string) *OpenAI {
	if apiKey == "" {
		return &OpenAI{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:  &client.Chat.Completions,
		model: openai.ChatModelGPT4oMini,
	}
}

// Inspire requests a short reflection related to name.
func (c *OpenAI) Inspire(ctx context.Context, name prayer.Name) (string, error) {
	if c.chat == nil {
		return "", ErrNoProvider
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You write peaceful, uplifting one-sentence reflections. Reply with the sentence only."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(fmt.Sprintf("Provide a short, 1-sentence spiritual reflection or inspiration related to the %s prayer or gratitude for the day.", name)),
					},
				},
			},
		},
		Temperature:         openai.Float(0.7),
		MaxCompletionTokens: openai.Int(80),
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.chat.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("inspiration request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion received")
	}
	return text, nil
}

// Fetch returns a reflection from p, or Fallback when p is nil or fails.
func Fetch(ctx context.Context, p Provider, name prayer.Name) string {
	if p == nil {
		return Fallback
	}
	text, err := p.Inspire(ctx, name)
	if err != nil {
		return Fallback
	}
	return text
}
