package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"calorina/internal/config"
	"calorina/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const geminiProvider = "gemini"

// geminiClient is a Completer for the Google Gemini API. A fresh API client is
// created per call so the key is read when it is needed.
type geminiClient struct {
	modelName string
	apiKey    func() string
	opts      []option.ClientOption
}

// NewGeminiClient creates a new Gemini completer.
func NewGeminiClient(cfg *config.Config, opts ...option.ClientOption) Completer {
	return &geminiClient{
		modelName: cfg.GeminiModel,
		apiKey: func() string {
			if cfg.GeminiAPIKey != "" {
				return cfg.GeminiAPIKey
			}
			return os.Getenv("GEMINI_API_KEY")
		},
		opts: opts,
	}
}

// Complete sends the conversation to Gemini and returns the reply text.
func (c *geminiClient) Complete(ctx context.Context, req Request) (ContentResponse, error) {
	key := c.apiKey()
	if key == "" {
		return ContentResponse{}, ErrMissingCredential
	}
	if len(req.History) == 0 {
		return ContentResponse{}, fmt.Errorf("gemini: empty conversation")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(key)}, c.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return ContentResponse{}, NewServiceError(geminiProvider, 0, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(c.modelName)
	configureModel(model, req)

	history, last := splitHistory(req.History)
	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return ContentResponse{}, NewServiceError(geminiProvider, statusCode(err), err)
	}

	text, err := responseText(resp)
	if err != nil {
		return ContentResponse{}, NewServiceError(geminiProvider, 0, err)
	}

	return ContentResponse{
		Content: text,
		Usage:   usage(c.modelName, resp),
	}, nil
}

func configureModel(model *genai.GenerativeModel, req Request) {
	if req.Instruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instruction)}}
	}
	if req.ResponseSchema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.ResponseSchema
	}
}

// splitHistory converts the conversation into Gemini contents and separates
// the turn being answered from the preceding history.
func splitHistory(msgs []Message) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}
	return contents[:len(contents)-1], contents[len(contents)-1]
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}
	return sb.String(), nil
}

func usage(model string, resp *genai.GenerateContentResponse) shared.TokenUsage {
	u := shared.TokenUsage{Model: model}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return u
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
