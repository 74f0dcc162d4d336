package openai

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/domain/entity"
	"github.com/linkyfire/guide-backend/internal/infrastructure/config"
	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

// guideSystemPrompt is the fixed assistant persona for chat completions.
const guideSystemPrompt = `You are a Guide in Morocco, you are given a location and you need to provide the user with the top 5 tourist attractions near the given location with detailed metadata.
if the user asks for a specific location, you need to provide the user with the top 5 tourist attractions near the given location with detailed metadata.`

// suggestSystemPrompt pins the structured-output contract for SuggestAttractions.
const suggestSystemPrompt = "You must provide exactly 5 tourist spots with complete details for each location requested. Always populate the spots array with 5 entries."

// Provider is an OpenAI-compatible HTTP client exposing the three operations
// the relay needs: single-shot completion, streaming completion, and the
// schema-constrained attraction query.
type Provider struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// NewProvider creates the chat-completion client.
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) *Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 300 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &Provider{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client: &http.Client{
			Transport: transport,
		},
		logger: logger.With(zap.String("component", "llm"), zap.String("type", "openai")),
	}
}

// Complete performs a single-shot completion for a user message augmented with
// the resolved location. No retry; upstream failure is a service error.
func (p *Provider) Complete(ctx context.Context, userMessage, location string) (string, error) {
	req := &Request{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: guideSystemPrompt},
			{Role: "user", Content: userMessage + fmt.Sprintf(" for the location: %s", location)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	resp, err := p.doRequest(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", domainErrors.NewServiceUnavailableError("empty completion: no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// CompleteStream performs a streaming completion, forwarding each content
// delta to deltaCh in emission order and returning the full accumulated text.
// The caller owns deltaCh. Cancelling ctx force-closes the upstream stream.
func (p *Provider) CompleteStream(ctx context.Context, userMessage string, deltaCh chan<- string) (string, error) {
	req := &Request{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: guideSystemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	body, err := json.Marshal(StreamRequest{Request: req, Stream: true})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", domainErrors.NewServiceUnavailableError("chat completion stream failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", domainErrors.NewServiceUnavailableError(
			fmt.Sprintf("chat completion API error %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	// Context cancellation body-close watchdog: a disconnected caller must
	// stop the upstream drain, not leave the scanner blocked on a read.
	streamDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.logger.Info("Context cancelled, force-closing SSE stream", zap.Error(ctx.Err()))
			resp.Body.Close()
		case <-streamDone:
		}
	}()

	full, err := parseSSEStream(ctx, resp.Body, deltaCh, p.logger)
	close(streamDone)
	return full, err
}

// SuggestAttractions asks the model for exactly five nearby attractions via a
// forced function call, then re-validates the contract: upstream schema
// violations are a hard failure, never truncated or padded.
func (p *Provider) SuggestAttractions(ctx context.Context, location string) ([]entity.Attraction, error) {
	req := &Request{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: suggestSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Find and list exactly 5 top tourist attractions near %s. Include title, details, exact location, distance, walking time, entry fee, and opening hours for each spot.",
				location)},
		},
		Tools: []Tool{touristSpotsTool()},
		ToolChoice: &ToolChoice{
			Type:     "function",
			Function: ToolChoiceFunction{Name: touristSpotsToolName},
		},
	}

	resp, err := p.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, domainErrors.NewServiceUnavailableError("suggestion response contained no tool call", nil)
	}

	var args struct {
		Spots []entity.Attraction `json:"spots"`
	}
	rawArgs := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return nil, domainErrors.NewServiceUnavailableError("failed to parse suggestion tool call arguments", err)
	}

	if err := entity.ValidateSpots(args.Spots); err != nil {
		p.logger.Warn("Model violated suggestion schema",
			zap.Int("spots", len(args.Spots)),
			zap.Error(err),
		)
		return nil, domainErrors.NewServiceUnavailableError("suggestion response violated schema", err)
	}

	return args.Spots, nil
}

// doRequest posts a non-streaming chat completion and decodes the response.
func (p *Provider) doRequest(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, domainErrors.NewServiceUnavailableError("chat completion request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.NewServiceUnavailableError("failed to read completion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domainErrors.NewServiceUnavailableError(
			fmt.Sprintf("chat completion API error %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, domainErrors.NewServiceUnavailableError("failed to parse completion response", err)
	}

	return &apiResp, nil
}
