package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

const extractionPrompt = `Analyze this trade document (invoice, packing slip, or bill of lading) and extract its contents as JSON.

Return ONLY a JSON object with this exact shape:
{
  "documentType": "INVOICE" | "PACKING SLIP" | "BOL",
  "vendorName": "...",
  "invoiceDate": "YYYY-MM-DD",
  "totalAmount": 0.00,
  "currencySymbol": "...",
  "language": "the language of the line item text, or Original if English",
  "languageConfidence": 0-100,
  "lineItems": [
    {
      "sku": "...",
      "description": "...",
      "glCategory": "a general-ledger expense category",
      "quantity": 0,
      "unitPrice": 0.00,
      "totalAmount": 0.00,
      "glConfidence": 0-100,
      "glReasoning": "one sentence explaining the category choice"
    }
  ]
}

Use empty strings for unreadable text fields and 0 for unreadable numbers. Do not invent line items.`

// Gemini extracts structured records from document images using the Gemini
// vision API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed extractor.
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

// Extract sends the document to Gemini and coerces the response into a
// domain record. Errors are normalized into the application taxonomy before
// they leave this method.
func (g *Gemini) Extract(ctx context.Context, name string, data []byte, mimeType string) (model.Record, error) {
	if err := ValidateFileType(name, mimeType); err != nil {
		return model.Record{}, err
	}

	parts := []genai.Part{
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text(extractionPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return model.Record{}, normalizeAPIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return model.Record{}, fmt.Errorf("%w: empty response for %s", common.ErrReadFailed, name)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	raw, err := parseExtractionJSON(text.String())
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: %s: %v", common.ErrReadFailed, name, err)
	}

	return raw.ToRecord(), nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// parseExtractionJSON pulls the JSON object out of a model response that may
// be wrapped in markdown fences or surrounded by prose.
func parseExtractionJSON(text string) (RawRecord, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return RawRecord{}, fmt.Errorf("no JSON object found in response")
	}

	var raw RawRecord
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return RawRecord{}, fmt.Errorf("unmarshaling response: %w", err)
	}

	return raw, nil
}

// normalizeAPIError maps collaborator failures onto the application error
// taxonomy so the pipeline never sees a provider-specific error shape.
func normalizeAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return fmt.Errorf("%w: %v", common.ErrQuotaExceeded, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "rate limit") {
		return fmt.Errorf("%w: %v", common.ErrQuotaExceeded, err)
	}

	if strings.Contains(msg, "unable to process") || strings.Contains(msg, "invalid argument") {
		return fmt.Errorf("%w: %v", common.ErrReadFailed, err)
	}

	return fmt.Errorf("extraction failed: %w", err)
}
