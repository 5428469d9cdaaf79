package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c, srv
}

func toolCallResponse(arguments string) string {
	return `{"choices":[{"message":{"tool_calls":[{"function":{"arguments":` +
		string(mustJSON(arguments)) + `}}]}}]}`
}

func mustJSON(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func TestAnalyze_ParsesToolCall(t *testing.T) {
	args := `{"items":[{"item":"plastic bottle","type":"recyclable","confidence":95,` +
		`"recommendation":"Rinse and drop at a recycling point.",` +
		`"environmental_impact":"Takes centuries to degrade in landfill."}],` +
		`"summary":"One recyclable item detected."}`

	var gotReq map[string]interface{}
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolCallResponse(args)))
	})
	defer srv.Close()

	result, err := c.Analyze(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Item != "plastic bottle" || item.Type != "recyclable" || item.Confidence != 95 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if result.Summary != "One recyclable item detected." {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}

	// the request forces the structured tool
	if gotReq["model"] != "google/gemini-3-flash-preview" {
		t.Fatalf("unexpected model: %v", gotReq["model"])
	}
	if gotReq["tool_choice"] == nil {
		t.Fatal("tool_choice missing from request")
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := c.Analyze(context.Background(), "AAAA")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", gwErr.Status)
	}
	if gwErr.Message != "Rate limit exceeded. Please try again shortly." {
		t.Fatalf("message = %q", gwErr.Message)
	}
}

func TestAnalyze_CreditsExhausted(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})
	defer srv.Close()

	_, err := c.Analyze(context.Background(), "AAAA")
	if !errors.Is(err, ErrCreditsExhausted) {
		t.Fatalf("expected ErrCreditsExhausted, got %v", err)
	}
}

func TestAnalyze_UpstreamFailure(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.Analyze(context.Background(), "AAAA")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
}

func TestAnalyze_NoToolCall(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{}}]}`))
	})
	defer srv.Close()

	_, err := c.Analyze(context.Background(), "AAAA")
	if !errors.Is(err, ErrNoStructuredResp) {
		t.Fatalf("expected ErrNoStructuredResp, got %v", err)
	}
}

func TestAnalyze_MalformedToolArguments(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(toolCallResponse("{not json")))
	})
	defer srv.Close()

	_, err := c.Analyze(context.Background(), "AAAA")
	if !errors.Is(err, ErrNoStructuredResp) {
		t.Fatalf("expected ErrNoStructuredResp, got %v", err)
	}
}
