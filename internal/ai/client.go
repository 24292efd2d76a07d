// Package ai talks to an OpenAI-compatible chat-completion endpoint for
// diary conversation replies and end-of-day analysis. The model is stateless
// between calls, so callers re-send the full transcript every time; this
// package keeps no conversation memory.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatdiary/chatdiary-go/internal/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

var (
	ErrUnconfigured      = errors.New("ai client is not configured")
	ErrTransport         = errors.New("ai request failed")
	ErrMalformedResponse = errors.New("ai response is not valid JSON")
	ErrInvalidContent    = errors.New("ai response content failed validation")
)

const systemPrompt = "You are a warm, attentive journaling companion. " +
	"Ask the user about their day, listen, and respond briefly and kindly. " +
	"Ask at most one follow-up question per reply."

const analysisPromptFormat = `Analyze the following chat log and return the result as a JSON object with exactly these two elements:

1. "summary": a short diary-style summary of the conversation, written from the user's perspective.
2. "emotions": an object scoring the user's emotions across the whole conversation as integers from 0 to 100. Include all five keys, even when a score is low:
   - joy
   - anger
   - sadness
   - anxiety
   - relief

Example of the expected JSON:
{
  "summary": "Visited a new cafe today; the coffee was great and the staff were friendly. Got caught in the rain on the way home, but overall it was a good day.",
  "emotions": {"joy": 75, "anger": 5, "sadness": 25, "anxiety": 15, "relief": 40}
}

--- chat log ---
%s
--- end of chat log ---

Output only the JSON object, with no extra commentary.`

// Client is a diary analysis client. A Client built without an API key is
// permanently unconfigured: every call fails fast with ErrUnconfigured
// instead of attempting the network.
type Client struct {
	llm llms.Model
}

// NewClient builds a client against an OpenAI-compatible endpoint. An empty
// apiKey yields an unconfigured (but usable) client so the rest of the
// application can keep running without analysis features.
func NewClient(apiKey, baseURL, modelName string) (*Client, error) {
	if apiKey == "" {
		return &Client{}, nil
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	return &Client{llm: llm}, nil
}

// Configured reports whether the client has a usable model credential.
func (c *Client) Configured() bool {
	return c.llm != nil
}

// Converse sends the full turn history to the model and returns the
// assistant's next reply.
func (c *Client) Converse(ctx context.Context, turns []model.Turn) (string, error) {
	if c.llm == nil {
		return "", ErrUnconfigured
	}

	messages := make([]llms.MessageContent, 0, len(turns)+1)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt))
	for _, turn := range turns {
		role := schema.ChatMessageTypeHuman
		if turn.Role == model.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrTransport)
	}

	return resp.Choices[0].Content, nil
}

// Analysis is a validated summary-and-emotions result.
type Analysis struct {
	Summary  string
	Emotions model.EmotionScores
}

// Analyze sends the composed transcript to the model with an explicit JSON
// output-format instruction and parses and validates the reply. The whole
// result is rejected on any missing key, wrong type, or out-of-range score;
// nothing is clamped or partially accepted.
func (c *Client) Analyze(ctx context.Context, transcript string) (*Analysis, error) {
	if c.llm == nil {
		return nil, ErrUnconfigured
	}

	prompt := fmt.Sprintf(analysisPromptFormat, transcript)
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrTransport)
	}

	return parseAnalysis(resp.Choices[0].Content)
}
