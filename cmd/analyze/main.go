// Standalone serverless entrypoint for the waste classification proxy. The
// same analysis is also exposed on the API server; this binary exists for
// deployments that route photo analysis through a Lambda at the edge.
package main

import (
	"backend/internal/analyze"
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

type analyzeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// App holds the gateway client shared across invocations.
type App struct {
	client *analyze.Client
}

func main() {
	client := analyze.NewClient(os.Getenv("AI_GATEWAY_API_KEY"))
	if gatewayURL := os.Getenv("AI_GATEWAY_URL"); gatewayURL != "" {
		client.BaseURL = gatewayURL
	}
	app := &App{client: client}
	lambda.Start(app.handler)
}

func (a *App) handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	var body analyzeRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil || body.ImageBase64 == "" {
		return errorResponse(http.StatusBadRequest, "No image provided"), nil
	}

	result, err := a.client.Analyze(ctx, body.ImageBase64)
	if err != nil {
		if gwErr, ok := err.(*analyze.GatewayError); ok {
			return errorResponse(gwErr.Status, gwErr.Message), nil
		}
		log.Error().Err(err).Msg("waste analysis failed")
		return errorResponse(http.StatusInternalServerError, "AI analysis failed"), nil
	}

	return jsonResponse(http.StatusOK, result), nil
}

func jsonResponse(status int, payload interface{}) events.APIGatewayV2HTTPResponse {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "AI analysis failed")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}

func errorResponse(status int, message string) events.APIGatewayV2HTTPResponse {
	raw, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}
