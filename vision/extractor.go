// Package vision extracts food items and mass estimates from meal photos
// using a vision-capable chat model.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	agentai "github.com/edw-crtn/AgentAI"
)

// extractionPrompt asks for machine-readable output only. Models still wrap
// the JSON in prose often enough that parsing stays defensive.
const extractionPrompt = `Analyze this meal photo and list every distinct food item you can identify,
with an estimated mass in grams for the visible portion.

Respond with ONLY a JSON object of this exact shape, no other text:
{"items": [{"name": "pork sausage", "mass_g": 120}, {"name": "potatoes", "mass_g": 150}]}

Use short generic English food names. If you cannot identify any food, return {"items": []}.`

// Extractor turns meal photos into food observations.
type Extractor struct {
	api   *openai.Client
	model string
}

func NewExtractor(cfg agentai.ModelConfig) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Extractor{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.VisionModelID,
	}, nil
}

// Extract sends the image to the vision model and parses its item list. An
// unparsable model reply yields an empty list, not an error; usage is returned
// for the caller's vision bucket whenever the provider reports it.
func (e *Extractor) Extract(ctx context.Context, image []byte) ([]agentai.FoodObservation, *agentai.TokenUsage, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := e.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("vision call failed: %w", err)
	}

	usage := &agentai.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	if len(resp.Choices) == 0 {
		return []agentai.FoodObservation{}, usage, nil
	}

	text := resp.Choices[0].Message.Content
	items := parseItems(text)
	slog.Info("VISION: Extracted items", "count", len(items), "raw_len", len(text))
	return items, usage, nil
}

// parseItems decodes the model output. First attempt assumes pure JSON; the
// fallback extracts the outermost {...} block. Anything else yields an empty
// list.
func parseItems(text string) []agentai.FoodObservation {
	parsed, ok := decodeItems(text)
	if !ok {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end <= start {
			return []agentai.FoodObservation{}
		}
		parsed, ok = decodeItems(text[start : end+1])
		if !ok {
			return []agentai.FoodObservation{}
		}
	}

	cleaned := make([]agentai.FoodObservation, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.MassG <= 0 {
			continue
		}
		cleaned = append(cleaned, agentai.FoodObservation{Name: name, MassG: item.MassG})
	}
	return cleaned
}

type itemList struct {
	Items []agentai.FoodObservation `json:"items"`
}

func decodeItems(text string) (itemList, bool) {
	var parsed itemList
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return itemList{}, false
	}
	return parsed, true
}
