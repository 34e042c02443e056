package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
)

const visionSystemPrompt = `Return ONLY a JSON array of visible ingredients with confidence >= 0.7.
Do not include generic items (oil, salt, pepper, spices, water).
Example: ["tomato", "cheese"]`

// ExtractIngredients asks the vision model which ingredients are visible in
// the image. The result is lower-cased and deduplicated, original order kept.
func (c *Client) ExtractIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	req := providerRequest{
		Model:           c.cfg.VisionModel,
		MaxOutputTokens: 300,
		Temperature:     0,
		Input: []providerMessage{
			{
				Role: "system",
				Content: []providerPart{
					{Type: "input_text", Text: visionSystemPrompt},
				},
			},
			{
				Role: "user",
				Content: []providerPart{
					{Type: "input_text", Text: "Identify visible ingredients"},
					{Type: "input_image", ImageURL: dataURL, Detail: "auto"},
				},
			},
		},
	}

	text, err := c.createResponse(ctx, req)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal([]byte(sanitizeJSONOutput(text)), &names); err != nil {
		return nil, badOutputError("parse ingredient list", err)
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out, nil
}
