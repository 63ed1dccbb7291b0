package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vaibhavvyavahare/railtrace/config"
)

// CompletionOptions tunes a single text completion
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
}

// TextCompleter sends a prompt to a text-completion API and returns its JSON response
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (json.RawMessage, error)
}

// SarvamClient calls the Sarvam AI text completion endpoint
type SarvamClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewSarvamClient creates a Sarvam client from the application config
func NewSarvamClient(cfg *config.Config) *SarvamClient {
	return &SarvamClient{
		baseURL: strings.TrimRight(cfg.SarvamBaseURL, "/"),
		apiKey:  cfg.SarvamAPIKey,
		model:   cfg.SarvamModel,
		httpClient: &http.Client{
			Timeout: cfg.AIRequestTimeout,
		},
	}
}

var sarvamInstance TextCompleter

// GetSarvamClient returns the configured completer, nil when Sarvam is disabled
func GetSarvamClient() TextCompleter {
	return sarvamInstance
}

// SetSarvamClient sets the completer instance
func SetSarvamClient(c TextCompleter) {
	sarvamInstance = c
}

type sarvamRequest struct {
	Model       string  `json:"model"`
	Input       string  `json:"input"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Configured reports whether an API key is present
func (c *SarvamClient) Configured() bool {
	return c.apiKey != ""
}

// Complete posts the prompt to /v1/text/complete and returns the response body
func (c *SarvamClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrAIUpstream.WithDetail("Sarvam AI API error: SARVAM_API_KEY is not configured")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}

	payload, err := json.Marshal(sarvamRequest{
		Model:       c.model,
		Input:       prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sarvam request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text/complete", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrAIUpstream.Wrap(err).WithDetail("Sarvam AI API error: " + err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrAIUpstream.Wrap(err).WithDetail("Sarvam AI API error: " + err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrAIUpstream.WithDetail("Sarvam AI API error: " + upstreamMessage(resp.StatusCode, body))
	}

	if !json.Valid(body) {
		// plain text responses are passed on as a JSON string
		quoted, _ := json.Marshal(string(body))
		return quoted, nil
	}
	return body, nil
}

// upstreamMessage prefers the "message" field of an upstream error body
func upstreamMessage(status int, body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(body)))
}

// ParseAnalysis returns the upstream JSON as-is. A JSON string is itself
// parsed as JSON, falling back to the raw text with a parse error.
func ParseAnalysis(raw json.RawMessage) interface{} {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		var parsed interface{}
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return map[string]interface{}{
				"raw_response": text,
				"parse_error":  "Could not parse as JSON",
			}
		}
		return parsed
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return map[string]interface{}{
			"raw_response": string(raw),
			"parse_error":  "Could not parse as JSON",
		}
	}
	return value
}
