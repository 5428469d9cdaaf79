// Package analyze proxies waste photos to the AI classification gateway.
// The gateway is a chat-completion endpoint forced to answer through a
// declared function call; this package relays the structured result
// verbatim and collapses upstream failures into three coarse categories.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultModel      = "google/gemini-3-flash-preview"

	systemPrompt = `You are an expert waste classification AI. Analyze the image and classify the waste items you see. For each item, determine the waste type and provide a disposal recommendation.

Waste types: recyclable, organic, hazardous, burnable, reusable.

You MUST respond using the classify_waste tool.`

	userPrompt = "Classify the waste in this image. Identify all distinct items."
)

// WasteTypes enumerates the classification labels the gateway may return.
var WasteTypes = []string{"recyclable", "organic", "hazardous", "burnable", "reusable"}

// Item is one classified waste item.
type Item struct {
	Item                string  `json:"item"`
	Type                string  `json:"type"`
	Confidence          float64 `json:"confidence"`
	Recommendation      string  `json:"recommendation"`
	EnvironmentalImpact string  `json:"environmental_impact"`
}

// Result is the structured payload relayed to the caller.
type Result struct {
	Items   []Item `json:"items"`
	Summary string `json:"summary"`
}

// GatewayError maps an upstream failure to the status code and message the
// proxy exposes.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string { return e.Message }

// The three failure categories the proxy distinguishes.
var (
	ErrRateLimited      = &GatewayError{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again shortly."}
	ErrCreditsExhausted = &GatewayError{Status: http.StatusPaymentRequired, Message: "AI credits exhausted. Please add funds."}
	ErrAnalysisFailed   = &GatewayError{Status: http.StatusInternalServerError, Message: "AI analysis failed"}
	ErrNoStructuredResp = &GatewayError{Status: http.StatusInternalServerError, Message: "AI did not return structured results"}
)

// Client talks to the AI gateway.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
}

// NewClient returns a gateway client with production defaults.
func NewClient(apiKey string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		BaseURL:    defaultGatewayURL,
		APIKey:     apiKey,
		Model:      defaultModel,
	}
}

// classifyWasteTool is the function-call contract the gateway must answer
// through, mirrored from the product's classification schema.
var classifyWasteTool = map[string]interface{}{
	"type": "function",
	"function": map[string]interface{}{
		"name":        "classify_waste",
		"description": "Classify waste items found in the image",
		"parameters": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"items": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"item":                 map[string]interface{}{"type": "string", "description": "Name of the waste item detected"},
							"type":                 map[string]interface{}{"type": "string", "enum": WasteTypes},
							"confidence":           map[string]interface{}{"type": "number", "description": "Confidence percentage 0-100"},
							"recommendation":       map[string]interface{}{"type": "string", "description": "Disposal recommendation in 1-2 sentences"},
							"environmental_impact": map[string]interface{}{"type": "string", "description": "Brief note on environmental impact if disposed improperly"},
						},
						"required":             []string{"item", "type", "confidence", "recommendation", "environmental_impact"},
						"additionalProperties": false,
					},
				},
				"summary": map[string]interface{}{"type": "string", "description": "One sentence overall summary of the waste analysis"},
			},
			"required":             []string{"items", "summary"},
			"additionalProperties": false,
		},
	},
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze forwards one base64-encoded image to the gateway and returns the
// parsed classification. All failures come back as *GatewayError.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (*Result, error) {
	payload := map[string]interface{}{
		"model": c.Model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": []map[string]interface{}{
				{"type": "text", "text": userPrompt},
				{"type": "image_url", "image_url": map[string]string{"url": imageBase64}},
			}},
		},
		"tools":       []interface{}{classifyWasteTool},
		"tool_choice": map[string]interface{}{"type": "function", "function": map[string]string{"name": "classify_waste"}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("AI gateway unreachable")
		return nil, ErrAnalysisFailed
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, ErrCreditsExhausted
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Bytes("body", raw).Msg("AI gateway error")
		return nil, ErrAnalysisFailed
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		log.Error().Err(err).Msg("AI gateway returned malformed JSON")
		return nil, ErrAnalysisFailed
	}

	if len(chat.Choices) == 0 || len(chat.Choices[0].Message.ToolCalls) == 0 {
		return nil, ErrNoStructuredResp
	}

	var result Result
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.ToolCalls[0].Function.Arguments), &result); err != nil {
		log.Error().Err(err).Msg("AI gateway tool arguments not parseable")
		return nil, ErrNoStructuredResp
	}
	return &result, nil
}
