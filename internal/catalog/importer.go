package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"calorina/internal/llm"
	"calorina/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/generative-ai-go/genai"
)

// maxPageText bounds the page text sent for extraction.
const maxPageText = 12000

const extractionInstruction = `You are a nutrition data extraction expert. Extract the main dish described in the page text you are given.
Return the result strictly as a JSON object with this structure:
{
  "name": "Dish name",
  "description": "One sentence description",
  "calories": 450
}
calories is the estimated kcal for one serving as an integer.`

var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":        {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"calories":    {Type: genai.TypeInteger},
	},
	Required: []string{"name", "description", "calories"},
}

// Draft is a meal read from a web page, not yet priced or categorised.
type Draft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	Image       string `json:"image,omitempty"`
	SourceURL   string `json:"sourceUrl"`
}

// Meal completes the draft with the admin's choices.
func (d Draft) Meal(category Category, t Time, price float64) Meal {
	return Meal{
		Name:        d.Name,
		Description: d.Description,
		Calories:    d.Calories,
		Image:       d.Image,
		Price:       price,
		Category:    category,
		Time:        t,
	}
}

// Importer reads meal drafts from recipe pages.
type Importer struct {
	httpClient *http.Client
	completer  llm.Completer
	logger     *slog.Logger
}

// NewImporter creates an Importer. With a nil completer only the page's
// OpenGraph metadata is used.
func NewImporter(completer llm.Completer) *Importer {
	return &Importer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		completer:  completer,
		logger:     slog.Default(),
	}
}

// ImportURL fetches the page at url and extracts a meal draft from it.
func (im *Importer) ImportURL(ctx context.Context, url string) (Draft, error) {
	doc, err := im.fetch(ctx, url)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	draft := fromMetadata(doc)
	draft.SourceURL = url

	var extractErr error
	if im.completer != nil {
		extracted, err := im.extract(ctx, cleanText(doc))
		if err != nil {
			// The page metadata still makes a usable draft.
			extractErr = fmt.Errorf("ai extraction failed: %w", err)
			im.logger.Warn("meal extraction failed, using page metadata", "url", url, "error", err)
		} else {
			draft.Name = firstNonEmpty(extracted.Name, draft.Name)
			draft.Description = firstNonEmpty(extracted.Description, draft.Description)
			draft.Calories = extracted.Calories
		}
	}

	if draft.Name == "" {
		if extractErr != nil {
			return Draft{}, extractErr
		}
		return Draft{}, fmt.Errorf("%w: no meal found at %s", shared.ErrInvalidInput, url)
	}
	return draft, nil
}

func (im *Importer) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := im.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (im *Importer) extract(ctx context.Context, text string) (Draft, error) {
	resp, err := im.completer.Complete(ctx, llm.Request{
		Instruction:    extractionInstruction,
		History:        []llm.Message{{Role: llm.RoleUser, Text: text}},
		ResponseSchema: draftSchema,
	})
	if err != nil {
		return Draft{}, err
	}

	var d Draft
	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return Draft{}, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	return d, nil
}

// fromMetadata reads the OpenGraph tags, falling back to <title> and the
// description meta tag.
func fromMetadata(doc *goquery.Document) Draft {
	meta := func(selectors ...string) string {
		for _, sel := range selectors {
			if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	return Draft{
		Name:        firstNonEmpty(meta(`meta[property="og:title"]`), strings.TrimSpace(doc.Find("title").First().Text())),
		Description: meta(`meta[property="og:description"]`, `meta[name="description"]`),
		Image:       meta(`meta[property="og:image"]`),
	}
}

// cleanText strips noise and returns the visible body text.
func cleanText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxPageText {
		text = strings.ToValidUTF8(text[:maxPageText], "")
	}
	return text
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
