package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"calorina/internal/config"
	"calorina/internal/shared"
)

const (
	groqProvider = "groq"
	groqAPIURL   = "https://api.groq.com/openai/v1/chat/completions"
	groqModel    = "llama-3.3-70b-versatile"
)

// groqClient is a Completer for the Groq OpenAI-compatible API. Like the
// Gemini client it reads its key on every call.
type groqClient struct {
	apiKey     func() string
	url        string
	model      string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) Completer {
	return &groqClient{
		apiKey: func() string {
			if cfg.GroqAPIKey != "" {
				return cfg.GroqAPIKey
			}
			return os.Getenv("GROQ_API_KEY")
		},
		url:        groqAPIURL,
		model:      groqModel,
		httpClient: &http.Client{},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type groqResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to Groq and returns the reply text.
func (c *groqClient) Complete(ctx context.Context, req Request) (ContentResponse, error) {
	key := c.apiKey()
	if key == "" {
		return ContentResponse{}, ErrMissingCredential
	}

	body := groqRequest{
		Model:       c.model,
		Messages:    make([]groqMessage, 0, len(req.History)+1),
		Temperature: 0.7,
	}
	if req.Instruction != "" {
		body.Messages = append(body.Messages, groqMessage{Role: "system", Content: req.Instruction})
	}
	for _, m := range req.History {
		body.Messages = append(body.Messages, groqMessage{Role: string(m.Role), Content: m.Text})
	}
	if req.ResponseSchema != nil {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ContentResponse{}, NewServiceError(groqProvider, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ContentResponse{}, NewServiceError(groqProvider, resp.StatusCode, fmt.Errorf("body=%s", string(bodyBytes)))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, NewServiceError(groqProvider, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(groqResp.Choices) == 0 {
		return ContentResponse{}, NewServiceError(groqProvider, resp.StatusCode, fmt.Errorf("no content generated"))
	}

	return ContentResponse{
		Content: groqResp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     groqResp.Usage.PromptTokens,
			CompletionTokens: groqResp.Usage.CompletionTokens,
			TotalTokens:      groqResp.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
