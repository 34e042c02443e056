package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hoangdinh2411/cook-ai-api/internal/recipes"
)

const recipesSystemPrompt = `You are a concise culinary assistant.
Return ONLY JSON matching the schema. No prose.`

// GenerateRecipes turns a normalized filter into exactly five recipes. The
// model is asked for strict schema output; the answer is still validated
// locally before anyone trusts it.
func (c *Client) GenerateRecipes(ctx context.Context, filter recipes.Filter) (*recipes.RecipeSet, error) {
	req := providerRequest{
		Model:           c.cfg.RecipesModel,
		MaxOutputTokens: 2000,
		Temperature:     0.7,
		Input: []providerMessage{
			{
				Role: "system",
				Content: []providerPart{
					{Type: "input_text", Text: recipesSystemPrompt},
				},
			},
			{
				Role: "user",
				Content: []providerPart{
					{Type: "input_text", Text: buildRecipesTask(filter)},
				},
			},
		},
		Text: &providerText{
			Format: providerTextFormat{
				Name:   "RecipesSchema",
				Type:   "json_schema",
				Strict: true,
				Schema: recipesSchema(),
			},
		},
	}

	text, err := c.createResponse(ctx, req)
	if err != nil {
		return nil, err
	}

	var set recipes.RecipeSet
	if err := json.Unmarshal([]byte(sanitizeJSONOutput(text)), &set); err != nil {
		return nil, badOutputError("parse recipe output", err)
	}
	if err := set.Validate(); err != nil {
		return nil, badOutputError("recipe output failed schema validation", err)
	}

	return &set, nil
}

// buildRecipesTask renders the user prompt from the normalized filter.
// Absent optional constraints are simply not mentioned.
func buildRecipesTask(f recipes.Filter) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Goal: Generate exactly %d recipes.
Each step must be clear and actionable, 2-3 short sentences if needed.
List all necessary ingredients.
Max 2 substitutions.
ALL fields (title, steps, reasons, method, difficulty, substitutions, ingredients) MUST be in %s.
`, recipes.RecipeCount, f.OutputLang)

	if len(f.Ingredients) > 0 {
		b.WriteString(" Ingredients available: " + strings.Join(f.Ingredients, ", ") + ".")
	}
	if f.Diet != "" {
		b.WriteString(" Diet constraint: " + f.Diet + ".")
	}
	if len(f.Allergies) > 0 {
		b.WriteString(" Allergies to avoid: " + strings.Join(f.Allergies, ", ") + ".")
	}
	if f.MaxMinutes > 0 {
		b.WriteString(" Max cooking time: " + strconv.Itoa(f.MaxMinutes) + " minutes.")
	}
	if f.Cuisine != "" {
		b.WriteString(" Cuisine style: " + f.Cuisine + ".")
	}
	if len(f.AllowedMethods) > 0 {
		b.WriteString(" Allowed cooking methods: " + strings.Join(f.AllowedMethods, ", ") + ".")
	}

	return b.String()
}

// recipesSchema is the strict JSON schema sent with the request. It mirrors
// what recipes.RecipeSet.Validate enforces locally.
func recipesSchema() map[string]any {
	recipeSchema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"title", "time_minutes", "difficulty", "method",
			"missing", "substitutions", "steps", "reasons", "ingredients",
		},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string"},
			"time_minutes": map[string]any{"type": "integer"},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []string{recipes.DifficultyEasy, recipes.DifficultyMedium},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "Main cooking method (e.g., grill, stir-fry, steam)",
			},
			"ingredients": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"missing": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"substitutions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"for", "use"},
					"properties": map[string]any{
						"for": map[string]any{"type": "string"},
						"use": map[string]any{"type": "string"},
					},
				},
			},
			"steps": map[string]any{
				"type":        "array",
				"maxItems":    5,
				"items":       map[string]any{"type": "string"},
				"description": "Detailed step-by-step instructions",
			},
			"reasons": map[string]any{
				"type":     "array",
				"maxItems": 2,
				"items":    map[string]any{"type": "string"},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"required":             []string{"recipes"},
		"additionalProperties": false,
		"properties": map[string]any{
			"recipes": map[string]any{
				"type":     "array",
				"minItems": recipes.RecipeCount,
				"maxItems": recipes.RecipeCount,
				"items":    recipeSchema,
			},
		},
	}
}
