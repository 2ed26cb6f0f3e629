package inspiration

import (
	"context"
	"errors"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

type fakeCompleter struct {
	resp *openai.ChatCompletion
	err  error
	req  openai.ChatCompletionNewParams
}

func (f *fakeCompleter) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.req = body
	return f.resp, f.err
}

func completion(text string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: text}},
		},
	}
}

func TestOpenAI_NoKey(t *testing.T) {
	_, err := NewOpenAI("").Inspire(context.Background(), prayer.Fajr)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestOpenAI_Inspire(t *testing.T) {
	fake := &fakeCompleter{resp: completion("  Dawn invites a quiet heart.\n")}
	c := &OpenAI{chat: fake, model: openai.ChatModelGPT4oMini}

	got, err := c.Inspire(context.Background(), prayer.Fajr)
	require.NoError(t, err)
	assert.Equal(t, "Dawn invites a quiet heart.", got)

	require.Len(t, fake.req.Messages, 2)
	assert.Contains(t, fake.req.Messages[1].OfUser.Content.OfString.Value, "Fajr prayer")
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompleter
	}{
		{"request error", &fakeCompleter{err: errors.New("429 too many requests")}},
		{"no choices", &fakeCompleter{resp: &openai.ChatCompletion{}}},
		{"blank text", &fakeCompleter{resp: completion("   ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &OpenAI{chat: tt.fake}
			_, err := c.Inspire(context.Background(), prayer.Asr)
			assert.Error(t, err)
		})
	}
}

type providerFunc func(context.Context, prayer.Name) (string, error)

func (f providerFunc) Inspire(ctx context.Context, n prayer.Name) (string, error) { return f(ctx, n) }

func TestFetch(t *testing.T) {
	ok := providerFunc(func(_ context.Context, n prayer.Name) (string, error) {
		return "Reflect before " + string(n) + ".", nil
	})
	failing := providerFunc(func(context.Context, prayer.Name) (string, error) {
		return "", errors.New("boom")
	})

	assert.Equal(t, "Reflect before Isha.", Fetch(context.Background(), ok, prayer.Isha))
	assert.Equal(t, Fallback, Fetch(context.Background(), failing, prayer.Isha))
	assert.Equal(t, Fallback, Fetch(context.Background(), nil, prayer.Isha))
	assert.Equal(t, Fallback, Fetch(context.Background(), NewOpenAI(""), prayer.Isha))
}
