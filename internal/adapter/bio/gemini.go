package bio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"user-record-service/pkg/logger"
	"user-record-service/pkg/security"
)

const (
	// DefaultBaseURL is the public Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
)

// GeminiConfig holds settings for the Generative Language REST client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration // zero keeps the HTTP client default
}

// GeminiGenerator calls the generateContent endpoint of a Gemini model.
type GeminiGenerator struct {
	client *resty.Client
	model  string
	log    *zap.Logger
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator backed by the Generative Language API.
func NewGeminiGenerator(cfg GeminiConfig, log *zap.Logger) *GeminiGenerator {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}

	return &GeminiGenerator{client: c, model: model, log: log}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate implements Generator. Remote failures are logged and replaced by Fallback.
func (g *GeminiGenerator) Generate(ctx context.Context, name string, age int, location string) string {
	text, err := g.generate(ctx, BuildPrompt(name, age, location))
	if err != nil {
		logger.WithContext(ctx, g.log).Warn("bio generation failed, using fallback",
			zap.String("model", g.model),
			zap.Error(err),
		)
		return Fallback(name, age, location)
	}
	return text
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		SetPathParam("model", g.model).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		var er errorResponse
		if jsonErr := json.Unmarshal(resp.Body(), &er); jsonErr == nil && er.Error.Message != "" {
			return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), er.Error.Message)
		}
		return "", fmt.Errorf("gemini status %d", resp.StatusCode())
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	text := security.CleanModelOutput(gr.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}
