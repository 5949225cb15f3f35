package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	models    *genai.Models
	model     string
	maxTokens int
}

// NewGeminiClient creates a Gemini client. An empty baseURL keeps the SDK default endpoint.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration, maxTokens int) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is missing")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if trimmed := strings.TrimRight(baseURL, "/"); trimmed != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: trimmed}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &GeminiClient{
		models:    client.Models,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate sends one request to Gemini and returns the text and the serialized SDK response.
func (c *GeminiClient) Generate(ctx context.Context, request Request) (string, []byte, error) {
	parts := []*genai.Part{genai.NewPartFromText(request.Prompt)}
	if request.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(request.Image.Data, request.Image.MIMEType))
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		MaxOutputTokens:  int32(resolveMaxTokens(c.maxTokens)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(request.Schema),
	}
	if system := strings.TrimSpace(request.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	response, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", nil, err
	}

	text := response.Text()
	raw := rawResponse(response, text)
	if strings.TrimSpace(text) == "" {
		return "", raw, errors.New("gemini response missing content")
	}

	return text, raw, nil
}

// rawResponse serializes the SDK reply for the request log. When that fails the
// model text stands in for it.
func rawResponse(response interface{}, text string) []byte {
	raw, err := json.Marshal(response)
	if err != nil {
		return []byte(text)
	}
	return raw
}

func toGenaiSchema(schema *Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{
		Type:             genaiType(schema.Kind),
		Description:      schema.Description,
		Required:         schema.Required,
		PropertyOrdering: schema.Ordering,
		Items:            toGenaiSchema(schema.Items),
	}

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}

func genaiType(kind SchemaKind) genai.Type {
	switch kind {
	case KindObject:
		return genai.TypeObject
	case KindArray:
		return genai.TypeArray
	case KindNumber:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}
