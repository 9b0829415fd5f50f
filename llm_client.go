package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"faircrop/agent"
)

// llmClient talks to the external language-model sidecar. It covers
// two narrow jobs: pulling structured fields out of free-form buyer
// text, and phrasing an already-decided counter offer. All pricing
// math stays in the agent package.
type llmClient struct {
	baseURL string
	http    *http.Client
}

func newLLMClient(baseURL string) *llmClient {
	if baseURL == "" || baseURL == "local" {
		baseURL = "http://127.0.0.1:8000"
	}
	return &llmClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 25 * time.Second},
	}
}

type extractReq struct {
	Text string `json:"text"`
}

type generateReq struct {
	Decision agent.NegotiationDecision `json:"decision"`
	Context  agent.MessageContext      `json:"context"`
}

type generateResp struct {
	Message string `json:"message"`
}

// ExtractOffer calls POST {base}/extract with the raw buyer text.
func (c *llmClient) ExtractOffer(ctx context.Context, buyerText string) (agent.ExtractedOffer, error) {
	var out agent.ExtractedOffer
	if buyerText == "" {
		return out, fmt.Errorf("empty buyer text")
	}
	if err := c.post(ctx, "/extract", extractReq{Text: buyerText}, &out); err != nil {
		return agent.ExtractedOffer{}, err
	}
	return out, nil
}

// NegotiationMessage calls POST {base}/generate. Only the message
// string from the response is used; any numbers the model emits are
// discarded in favor of the decision's own figures.
func (c *llmClient) NegotiationMessage(ctx context.Context, decision agent.NegotiationDecision, mctx agent.MessageContext) (string, error) {
	var out generateResp
	if err := c.post(ctx, "/generate", generateReq{Decision: decision, Context: mctx}, &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		return "", fmt.Errorf("llm returned empty message")
	}
	return out.Message, nil
}

func (c *llmClient) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal llm req: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("llm call failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("llm non-2xx: %s, body: %s", resp.Status, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode llm resp: %w", err)
	}
	return nil
}
