package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoangdinh2411/cook-ai-api/internal/recipes"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIKey:          "test-key",
		VisionModel:     "vision-model",
		RecipesModel:    "recipes-model",
		BaseURL:         srv.URL,
		MaxRetries:      1,
		BaseBackoff:     time.Millisecond,
		UpstreamTimeout: 5 * time.Second,
		HTTPClient:      srv.Client(),
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func responseWithText(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":     "resp_test",
		"model":  "test",
		"status": "completed",
		"output": []map[string]any{
			{
				"type": "message",
				"content": []map[string]any{
					{"type": "output_text", "text": text},
				},
			},
		},
		"usage": map[string]int{"input_tokens": 10, "output_tokens": 20, "total_tokens": 30},
	})
	return body
}

func validRecipeSetJSON(t *testing.T) string {
	t.Helper()

	set := recipes.RecipeSet{}
	for i := 0; i < recipes.RecipeCount; i++ {
		set.Recipes = append(set.Recipes, recipes.Recipe{
			Title:       "pho bo",
			TimeMinutes: 40,
			Difficulty:  recipes.DifficultyMedium,
			Method:      "simmer",
			Ingredients: []string{"beef", "noodles"},
			Missing:     []string{"star anise"},
			Steps:       []string{"simmer broth", "assemble bowl"},
			Reasons:     []string{"uses your beef"},
		})
	}
	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal recipe set: %v", err)
	}
	return string(raw)
}

func TestExtractIngredients(t *testing.T) {
	var gotReq providerRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// Model answers with fenced JSON and a duplicate.
		w.Write(responseWithText("```json\n[\"Tomato\", \"tomato\", \"Cheese\"]\n```"))
	})

	got, err := c.ExtractIngredients(context.Background(), []byte{0xff, 0xd8, 0x01}, "image/jpeg")
	if err != nil {
		t.Fatalf("ExtractIngredients failed: %v", err)
	}

	if len(got) != 2 || got[0] != "tomato" || got[1] != "cheese" {
		t.Fatalf("unexpected ingredients: %#v", got)
	}

	if gotReq.Model != "vision-model" {
		t.Fatalf("expected vision model, got %q", gotReq.Model)
	}
	imagePart := gotReq.Input[1].Content[1]
	if imagePart.Type != "input_image" {
		t.Fatalf("expected input_image part, got %q", imagePart.Type)
	}
	if !strings.HasPrefix(imagePart.ImageURL, "data:image/jpeg;base64,") {
		t.Fatalf("expected data URL, got %q", imagePart.ImageURL)
	}
}

func TestExtractIngredientsBadOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(responseWithText("sorry, I cannot see any food here"))
	})

	_, err := c.ExtractIngredients(context.Background(), []byte{0x01}, "image/png")
	genErr, ok := AsGenerationError(err)
	if !ok {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindBadOutput {
		t.Fatalf("expected bad_output, got %q", genErr.Kind)
	}
}

func TestGenerateRecipes(t *testing.T) {
	recipesJSON := validRecipeSetJSON(t)

	var gotReq providerRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(responseWithText(recipesJSON))
	})

	filter := recipes.Normalize(recipes.Filter{
		Ingredients: []string{"Beef", "noodles"},
		Diet:        "Keto",
		MaxMinutes:  45,
		OutputLang:  "EN",
	})

	set, err := c.GenerateRecipes(context.Background(), filter)
	if err != nil {
		t.Fatalf("GenerateRecipes failed: %v", err)
	}
	if len(set.Recipes) != recipes.RecipeCount {
		t.Fatalf("expected %d recipes, got %d", recipes.RecipeCount, len(set.Recipes))
	}

	if gotReq.Model != "recipes-model" {
		t.Fatalf("expected recipes model, got %q", gotReq.Model)
	}
	if gotReq.Text == nil || gotReq.Text.Format.Type != "json_schema" {
		t.Fatalf("expected strict json_schema format, got %#v", gotReq.Text)
	}
	prompt := gotReq.Input[1].Content[0].Text
	if !strings.Contains(prompt, "Ingredients available: beef, noodles.") {
		t.Fatalf("prompt missing ingredients: %q", prompt)
	}
	if !strings.Contains(prompt, "Diet constraint: keto.") {
		t.Fatalf("prompt missing diet: %q", prompt)
	}
	if !strings.Contains(prompt, "Max cooking time: 45 minutes.") {
		t.Fatalf("prompt missing time budget: %q", prompt)
	}
	if strings.Contains(prompt, "Cuisine style") {
		t.Fatalf("absent cuisine must not be mentioned: %q", prompt)
	}
}

func TestGenerateRecipesSchemaValidation(t *testing.T) {
	// Four recipes instead of five.
	set := recipes.RecipeSet{}
	for i := 0; i < recipes.RecipeCount-1; i++ {
		set.Recipes = append(set.Recipes, recipes.Recipe{
			Title:       "t",
			TimeMinutes: 10,
			Difficulty:  recipes.DifficultyEasy,
			Method:      "boil",
			Ingredients: []string{"egg"},
			Steps:       []string{"boil it"},
		})
	}
	raw, _ := json.Marshal(set)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(responseWithText(string(raw)))
	})

	_, err := c.GenerateRecipes(context.Background(), recipes.Filter{OutputLang: "en"})
	genErr, ok := AsGenerationError(err)
	if !ok {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindBadOutput {
		t.Fatalf("expected bad_output for schema failure, got %q", genErr.Kind)
	}
}

func TestRateLimitedUpstream(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	})

	_, err := c.ExtractIngredients(context.Background(), []byte{0x01}, "image/png")
	genErr, ok := AsGenerationError(err)
	if !ok {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindRateLimited {
		t.Fatalf("expected rate_limited, got %q", genErr.Kind)
	}
	if attempts != 2 {
		t.Fatalf("expected initial attempt plus one retry, got %d", attempts)
	}
}

func TestUnavailableUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GenerateRecipes(context.Background(), recipes.Filter{OutputLang: "en"})
	genErr, ok := AsGenerationError(err)
	if !ok {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindUnavailable {
		t.Fatalf("expected unavailable, got %q", genErr.Kind)
	}
}
