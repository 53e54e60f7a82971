// Package openai implements the engagement provider on the OpenAI Chat
// Completions API. It relays interview turns, decodes the completion marker
// protocol from each reply and keeps per-session conversation state in
// memory. The client reads OPENAI_API_KEY from the environment.
package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/engagement"
	"github.com/hupe1980/docflow/internal/util"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI engagement provider.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// SystemPrompt is the interviewer instruction template. It may reference
	// {{.CompletionMarker}} to embed the completion protocol marker.
	SystemPrompt string
}

// conversation is the per-session interview state. The system message is not
// stored; it is prepended to every request.
type conversation struct {
	messages []openai.ChatCompletionMessageParamUnion
	turns    int
	complete bool
	spec     map[string]any
}

// Provider runs requirement interviews through the OpenAI Chat Completions
// API. Conversation state lives in memory keyed by session ID.
type Provider struct {
	client *openai.Client
	opts   Options

	mu            sync.Mutex
	conversations map[string]*conversation
}

// NewProvider creates a provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	client := openai.NewClient()
	return NewProviderFromClient(&client, optFns...)
}

// NewProviderFromClient creates a provider from an existing client.
func NewProviderFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		SystemPrompt:        engagement.DefaultSystemPrompt,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{
		client:        client,
		opts:          opts,
		conversations: make(map[string]*conversation),
	}
}

// Process relays one user message to the model, decodes the completion
// protocol from the reply and advances the stored conversation. Failed calls
// leave the conversation untouched so a retried turn re-sends the same
// message.
func (p *Provider) Process(ctx context.Context, sessionID, text string) (*core.EngagementResult, error) {
	system, err := util.RenderTemplate(p.opts.SystemPrompt, map[string]any{
		"CompletionMarker": engagement.CompletionMarker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	p.mu.Lock()
	conv, ok := p.conversations[sessionID]
	if !ok {
		conv = &conversation{}
		p.conversations[sessionID] = conv
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv.messages)+2)
	messages = append(messages, openai.SystemMessage(system))
	messages = append(messages, conv.messages...)
	p.mu.Unlock()

	messages = append(messages, openai.UserMessage(text))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               p.opts.Model,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxCompletionTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	raw := resp.Choices[0].Message.Content

	visible, spec, complete := engagement.ParseReply(raw)

	p.mu.Lock()
	conv.messages = append(conv.messages, openai.UserMessage(text), openai.AssistantMessage(raw))
	conv.turns++
	if complete {
		conv.complete = true
		conv.spec = spec
	}
	p.mu.Unlock()

	return &core.EngagementResult{Reply: visible, Complete: complete}, nil
}

// IsComplete reports whether the model has completed the interview for this
// session with a decoded spec.
func (p *Provider) IsComplete(ctx context.Context, sessionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conv, ok := p.conversations[sessionID]
	return ok && conv.complete, nil
}

// CompletionPercentage estimates interview progress from the turn count.
// Only a completed interview reports 100.
func (p *Provider) CompletionPercentage(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conv, ok := p.conversations[sessionID]
	if !ok {
		return 0, nil
	}
	if conv.complete {
		return 100, nil
	}
	pct := conv.turns * 20
	if pct > 90 {
		pct = 90
	}
	return pct, nil
}

// FinalSpec returns the decoded requirement spec once the interview has
// completed with one.
func (p *Provider) FinalSpec(ctx context.Context, sessionID string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conv, ok := p.conversations[sessionID]
	if !ok || !conv.complete || conv.spec == nil {
		return nil, false, nil
	}
	return conv.spec, true, nil
}
