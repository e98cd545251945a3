package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Gemini translates line-item text using the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed translator.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", common.ErrMissingConfig)
	}
	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

type translationRequest struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	GLCategory  string `json:"glCategory"`
}

type translationResponse struct {
	Index                 int    `json:"index"`
	TranslatedDescription string `json:"translatedDescription"`
	TranslatedCategory    string `json:"translatedCategory"`
}

// Translate sends the items to Gemini and returns translations addressed by
// the original array positions.
func (g *Gemini) Translate(ctx context.Context, items []model.LineItem, targetLanguage string) ([]TranslatedItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	request := make([]translationRequest, len(items))
	for i, item := range items {
		request[i] = translationRequest{
			Index:       i,
			Description: item.Description,
			GLCategory:  item.GLCategory,
		}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshaling translation request: %w", err)
	}

	prompt := fmt.Sprintf(`Translate the description and glCategory of each entry into %s.

Input:
%s

Return ONLY a JSON array of objects shaped {"index": n, "translatedDescription": "...", "translatedCategory": "..."}, one per input entry, keeping each entry's index.`, targetLanguage, payload)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generating translation: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty translation response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return parseTranslationJSON(text.String())
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func parseTranslationJSON(text string) ([]TranslatedItem, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var responses []translationResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &responses); err != nil {
		return nil, fmt.Errorf("unmarshaling translation response: %w", err)
	}

	translated := make([]TranslatedItem, len(responses))
	for i, r := range responses {
		translated[i] = TranslatedItem{
			Index:       r.Index,
			Description: r.TranslatedDescription,
			GLCategory:  r.TranslatedCategory,
		}
	}

	return translated, nil
}
