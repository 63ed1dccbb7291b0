package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vaibhavvyavahare/railtrace/config"
)

const summaryInstruction = "Summarize the following rail operations data for actionable insights. Keep 6-10 sentences, concise bullets if helpful.\n\n"

// Summarizer turns a data prompt into summary text
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini generateContent endpoint
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client from the application config
func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(cfg.GeminiBaseURL, "/"),
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		httpClient: &http.Client{
			Timeout: cfg.AIRequestTimeout,
		},
	}
}

var geminiInstance Summarizer

// GetGeminiClient returns the configured summarizer, nil when Gemini is disabled
func GetGeminiClient() Summarizer {
	return geminiInstance
}

// SetGeminiClient sets the summarizer instance
func SetGeminiClient(s Summarizer) {
	geminiInstance = s
}

// Configured reports whether an API key is present
func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Summarize asks Gemini for a summary. Without an API key, or when Gemini
// returns no text, a deterministic summary built from the prompt is returned.
func (c *GeminiClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return FallbackSummary(prompt), nil
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: summaryInstruction + prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.4,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 512,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the request URL carries the key; report only the cause
		cause := err
		if urlErr, ok := err.(*url.Error); ok {
			cause = urlErr.Err
		}
		return "", ErrAIUpstream.Wrap(cause).WithDetail("Gemini API error: " + cause.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrAIUpstream.Wrap(err).WithDetail("Gemini API error: " + err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ErrAIUpstream.WithDetail(fmt.Sprintf("Gemini API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ErrAIUpstream.Wrap(err).WithDetail("Gemini API error: invalid response body")
	}
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		if text := parsed.Candidates[0].Content.Parts[0].Text; text != "" {
			return text, nil
		}
	}
	return FallbackSummary(prompt), nil
}

// FallbackSummary is the deterministic summary used when no model output is available
func FallbackSummary(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > 400 {
		runes = runes[:400]
	}
	return fmt.Sprintf("Summary: %s ...", string(runes))
}
