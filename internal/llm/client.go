package llm

import (
	"context"
	"fmt"
	"strings"
)

// Detector reports manipulative phrases in a chunk of text. The response is
// raw model output; callers normalize it with extract.ParseBatch.
type Detector interface {
	Detect(ctx context.Context, pass, text string) (*CompletionResponse, error)
}

// Rewriter produces a neutral version of a text
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (*CompletionResponse, error)
}

// Client implements Detector and Rewriter on top of a Provider
type Client struct {
	provider Provider
	prompts  PromptSet
}

// NewClient creates a client sending the given prompts to provider
func NewClient(provider Provider, prompts PromptSet) *Client {
	return &Client{provider: provider, prompts: prompts}
}

// Name returns the underlying provider name
func (c *Client) Name() string {
	return c.provider.Name()
}

// Detect runs one detection pass over text
func (c *Client) Detect(ctx context.Context, pass, text string) (*CompletionResponse, error) {
	prompt, err := c.prompts.DetectionPrompt(pass, text)
	if err != nil {
		return nil, err
	}

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System: c.prompts.System,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("detect (%s): %w", pass, err)
	}
	return resp, nil
}

// Rewrite asks the model for a neutral version of text
func (c *Client) Rewrite(ctx context.Context, text string) (*CompletionResponse, error) {
	// Rewrites are roughly as long as the input; ~4 bytes per token
	maxTokens := len(text)/3 + 256

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System:    c.prompts.Rewrite,
		Prompt:    text,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}

	resp.Text = stripFence(resp.Text)
	return resp, nil
}

// stripFence removes a Markdown code fence wrapped around the whole reply
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	return strings.TrimSpace(t)
}
