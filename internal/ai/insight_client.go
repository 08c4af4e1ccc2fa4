package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/revenue-dashboard/internal/service"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("GEMINI_API_KEY is not set")

type InsightClient struct {
	apiKey string
	model  string
}

func NewInsightClient(apiKey, model string) *InsightClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &InsightClient{apiKey: apiKey, model: model}
}

func (c *InsightClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Summarize asks Gemini for a short narrative over the dashboard answers.
func (c *InsightClient) Summarize(ctx context.Context, d service.Dashboard) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	start := time.Now()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("[insight] stage=client_init err=%v", err)
		return "", err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(BuildInsightPrompt(d)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	log.Printf("[insight] stage=gemini_start model=%s", c.model)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[insight] stage=gemini_fail model=%s err=%v", c.model, err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	log.Printf("[insight] stage=gemini_done model=%s len=%d totalMs=%d", c.model, len(text), time.Since(start).Milliseconds())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
