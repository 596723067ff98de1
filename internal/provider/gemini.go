package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiTransport sends prompts through the Gemini SDK. Clients are
// built lazily per credential and reused across calls.
type GeminiTransport struct {
	Model string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiTransport returns a transport for the given model name.
func NewGeminiTransport(model string) *GeminiTransport {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiTransport{Model: model, clients: make(map[string]*genai.Client)}
}

func (t *GeminiTransport) client(ctx context.Context, credential string) (*genai.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[credential]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, err
	}
	t.clients[credential] = c
	return c, nil
}

// Close releases all underlying SDK clients.
func (t *GeminiTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.Close()
	}
	t.clients = make(map[string]*genai.Client)
}

// Send submits one prompt and returns the first candidate's text. SDK
// error codes are mapped to *StatusError so rotation can classify
// credential rejections and rate limits.
func (t *GeminiTransport) Send(ctx context.Context, credential string, p Payload) (string, error) {
	client, err := t.client(ctx, credential)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(t.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}

	resp, err := model.GenerateContent(ctx, genai.Text(p.Prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}
