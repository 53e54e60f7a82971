// Package anthropic implements the engagement provider on the Anthropic
// Messages API. It relays interview turns to Claude, decodes the completion
// marker protocol from each reply and keeps per-session conversation state
// in memory.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/engagement"
	"github.com/hupe1980/docflow/internal/util"
)

// Options configures the Anthropic engagement provider (model id,
// temperature, max tokens, API key, interview prompt). Extend via functional
// options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// SystemPrompt is the interviewer instruction template. It may reference
	// {{.CompletionMarker}} to embed the completion protocol marker.
	SystemPrompt string
}

// conversation is the per-session interview state.
type conversation struct {
	messages []anthropic.MessageParam
	turns    int
	complete bool
	spec     map[string]any
}

// Provider runs requirement interviews through the Anthropic Messages API.
// Conversation state lives in memory keyed by session ID; after a process
// restart interviews start over while committed specs survive in the
// session store.
type Provider struct {
	client *anthropic.Client
	opts   Options

	mu            sync.Mutex
	conversations map[string]*conversation
}

// NewProvider creates a provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{
		client:        &client,
		opts:          opts,
		conversations: make(map[string]*conversation),
	}
}

// NewProviderFromClient creates a provider from an existing client.
func NewProviderFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{
		client:        client,
		opts:          opts,
		conversations: make(map[string]*conversation),
	}
}

func defaultOptions() Options {
	return Options{
		Model:        anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.7,
		MaxTokens:    4096,
		SystemPrompt: engagement.DefaultSystemPrompt,
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
	messages := make([]anthropic.MessageParam, len(conv.messages), len(conv.messages)+2)
	copy(messages, conv.messages)
	p.mu.Unlock()

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       p.opts.Model,
		Messages:    messages,
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	raw := sb.String()

	visible, spec, complete := engagement.ParseReply(raw)

	p.mu.Lock()
	conv.messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(raw)))
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
